package timefmt

import (
	"strconv"
	"time"
)

// Unit is the suffix of an elapsed-time label.
type Unit string

const (
	Seconds Unit = "s"
	Minutes Unit = "m"
	Hours   Unit = "h"
	Days    Unit = "d"
	Weeks   Unit = "w"
	Months  Unit = "mo"
	Years   Unit = "y"
)

// Bucket is an elapsed duration expressed in a single whole unit.
type Bucket struct {
	Value int64
	Unit  Unit
}

// String returns the compact label, e.g. "3h" or "2mo".
func (b Bucket) String() string {
	return strconv.FormatInt(b.Value, 10) + string(b.Unit)
}

// Clock is the wall clock read by Elapsed.
var Clock = time.Now

// Bucketize picks the largest unit whose count stays under its threshold.
// Months are fixed 30-day spans and years are 12 of those months.
// Negative durations are clamped to zero.
func Bucketize(d time.Duration) Bucket {
	return BucketizeSeconds(int64(d / time.Second))
}

// BucketizeSeconds is Bucketize for a whole number of seconds. It covers
// spans longer than a time.Duration can hold.
func BucketizeSeconds(seconds int64) Bucket {
	if seconds < 0 {
		seconds = 0
	}

	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	weeks := days / 7
	months := days / 30
	years := months / 12

	switch {
	case seconds < 60:
		return Bucket{Value: seconds, Unit: Seconds}
	case minutes < 60:
		return Bucket{Value: minutes, Unit: Minutes}
	case hours < 24:
		return Bucket{Value: hours, Unit: Hours}
	case days < 7:
		return Bucket{Value: days, Unit: Days}
	case weeks < 4:
		return Bucket{Value: weeks, Unit: Weeks}
	case months < 12:
		return Bucket{Value: months, Unit: Months}
	default:
		return Bucket{Value: years, Unit: Years}
	}
}

// Since labels the time elapsed between t and now.
// An instant after now yields "0s".
func Since(t, now time.Time) string {
	return BucketizeSeconds(wholeSeconds(t, now)).String()
}

// wholeSeconds is floor((now - t) / 1s) without going through
// time.Duration, which saturates at about 292 years.
func wholeSeconds(t, now time.Time) int64 {
	seconds := now.Unix() - t.Unix()
	if now.Nanosecond() < t.Nanosecond() {
		seconds--
	}
	return seconds
}

// Elapsed labels the time elapsed between t and Clock.
func Elapsed(t time.Time) string {
	return Since(t, Clock())
}

// SinceString parses s with Parse and labels the time elapsed until now.
func SinceString(s string, now time.Time) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Since(t, now), nil
}
