package utils

import "time"

// NanosToSeconds converts a GTFS stop time, parsed as nanoseconds since
// midnight, to whole seconds.
func NanosToSeconds(nanos int64) int64 {
	return nanos / int64(time.Second)
}

// YYYYMMDD converts a calendar date to the compact integer form used by GTFS
// calendars, e.g. 20260825.
func YYYYMMDD(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
