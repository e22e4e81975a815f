package timefmt

import (
	"testing"
	"time"
)

func TestSince(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"zero", 0, "0s"},
		{"30 seconds", 30 * time.Second, "30s"},
		{"59 seconds", 59 * time.Second, "59s"},
		{"60 seconds", 60 * time.Second, "1m"},
		{"90 seconds", 90 * time.Second, "1m"},
		{"sub-second floors", 1500 * time.Millisecond, "1s"},
		{"59 minutes", 59*time.Minute + 59*time.Second, "59m"},
		{"one hour", time.Hour, "1h"},
		{"23 hours", 23*time.Hour + 59*time.Minute, "23h"},
		{"25 hours", 25 * time.Hour, "1d"},
		{"6 days", 6 * 24 * time.Hour, "6d"},
		{"7 days", 7 * 24 * time.Hour, "1w"},
		{"10 days", 10 * 24 * time.Hour, "1w"},
		{"27 days", 27 * 24 * time.Hour, "3w"},
		{"28 days", 28 * 24 * time.Hour, "0mo"},
		{"30 days", 30 * 24 * time.Hour, "1mo"},
		{"359 days", 359 * 24 * time.Hour, "11mo"},
		{"360 days", 360 * 24 * time.Hour, "1y"},
		{"400 days", 400 * 24 * time.Hour, "1y"},
		{"800 days", 800 * 24 * time.Hour, "2y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Since(now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("Since(now-%s) = %q, want %q", tt.ago, got, tt.want)
			}
		})
	}
}

func TestSince_FutureClampsToZero(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.Local)

	if got := Since(now.Add(5*time.Minute), now); got != "0s" {
		t.Errorf("Since(future) = %q, want 0s", got)
	}
}

func TestSince_BeyondDurationRange(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		// 118338 days / 30 / 12
		{"1700", time.Date(1700, time.January, 8, 0, 0, 0, 0, time.UTC), "328y"},
		// 738885 days / 30 / 12
		{"year one", time.Date(1, time.January, 8, 0, 0, 0, 0, time.UTC), "2052y"},
		{"zero time", time.Time{}, "2052y"},
		{"sub-second floors", now.Add(-1500 * time.Millisecond), "1s"},
		{"just under a minute", now.Add(-59*time.Second - 999*time.Millisecond), "59s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Since(tt.t, now); got != tt.want {
				t.Errorf("Since(%s) = %q, want %q", tt.t, got, tt.want)
			}
		})
	}
}

func TestElapsedUsesClock(t *testing.T) {
	now := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	orig := Clock
	Clock = func() time.Time { return now }
	t.Cleanup(func() { Clock = orig })

	if got := Elapsed(now.Add(-3 * time.Hour)); got != "3h" {
		t.Errorf("Elapsed() = %q, want 3h", got)
	}
}

func TestBucketize(t *testing.T) {
	t.Parallel()

	b := Bucketize(3 * time.Hour)
	if b.Value != 3 || b.Unit != Hours {
		t.Errorf("Bucketize(3h) = %+v, want {3 h}", b)
	}
	if b.String() != "3h" {
		t.Errorf("String() = %q, want 3h", b.String())
	}
}

func TestSinceString(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)

	got, err := SinceString("2024-01-07T23:00:00Z", now)
	if err != nil {
		t.Fatalf("SinceString() error = %v", err)
	}
	if got != "1h" {
		t.Errorf("SinceString() = %q, want 1h", got)
	}

	if _, err := SinceString("", now); err == nil {
		t.Error("expected error for empty input")
	}
}
