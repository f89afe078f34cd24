package utils

import "time"

const secondsPerDay = 24 * 60 * 60

func NowUnixSeconds() int64 { return time.Now().Unix() }

// AddDays extends a unix-seconds timestamp by whole days.
func AddDays(ts int64, days int) int64 {
	return ts + int64(days)*secondsPerDay
}

// LaterOf returns the larger of two unix-seconds timestamps.
func LaterOf(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func FromUnixSeconds(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).UTC()
}

func FormatRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
