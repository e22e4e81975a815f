package layout

import "testing"

func TestBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"", "/"},
		{"/favorites", "/favorites"},
		{"/favorites/", "/favorites"},
		{"/user?id=3", "/user"},
		{"/explore/trending/today", "/explore"},
		{"/search#top", "/search"},
	}

	for _, tt := range tests {
		if got := BaseURL(tt.in); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path       string
		wantActive string
	}{
		{"/", "Directory"},
		{"/watching", "Inbox"},
		{"/analysis/languages", "Analysis"},
		{"/add", "Add Repository"},
		{"/settings", "Settings"},
		{"/user?id=1", ""},
	}

	for _, tt := range tests {
		sb := ForPath(tt.path)
		if sb.Title != "Git Chest" {
			t.Errorf("Title = %q", sb.Title)
		}

		active := 0
		for _, l := range sb.Links {
			if l.Active {
				active++
			}
		}
		link, ok := sb.Active()
		switch {
		case tt.wantActive == "" && (ok || active != 0):
			t.Errorf("ForPath(%q) active = %q, want none", tt.path, link.Title)
		case tt.wantActive != "" && (!ok || link.Title != tt.wantActive || active != 1):
			t.Errorf("ForPath(%q) active = %q (%d), want %q", tt.path, link.Title, active, tt.wantActive)
		}
	}
}

func TestLinks_Order(t *testing.T) {
	t.Parallel()

	want := []string{"/", "/favorites", "/watching", "/explore", "/analysis", "/search", "/add", "/settings"}
	got := Links()
	if len(got) != len(want) {
		t.Fatalf("len(Links()) = %d, want %d", len(got), len(want))
	}
	for i, l := range got {
		if l.Href != want[i] {
			t.Errorf("Links()[%d].Href = %q, want %q", i, l.Href, want[i])
		}
	}

	got[0].Title = "mutated"
	if Links()[0].Title != "Directory" {
		t.Error("Links() should return a copy")
	}
}
