package feed

import "fmt"

// FormatTimestamp renders seconds-from-midnight as HH:MM:SS, or
// HH:MM:SS.microseconds when displayMicro is set, matching the
// original's format_timestamp. It is a display helper only — the core
// engine always compares raw float64 seconds.
func FormatTimestamp(secondsFromMidnight float64, displayMicro bool) string {
	hours := int(secondsFromMidnight) / 3600
	mins := (int(secondsFromMidnight) % 3600) / 60
	secs := int(secondsFromMidnight) % 60
	if !displayMicro {
		return fmt.Sprintf("%02d:%02d:%02d", hours, mins, secs)
	}
	micros := int((secondsFromMidnight - float64(int(secondsFromMidnight))) * 1_000_000)
	return fmt.Sprintf("%02d:%02d:%02d.%06d", hours, mins, secs, micros)
}
