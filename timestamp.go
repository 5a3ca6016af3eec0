package pdftree

import (
	"fmt"
	"time"
)

// FormatTimestamp renders a Unix epoch time as a PDF date string,
// "D:YYYYMMDDHHmmSS+hh'mm'" (spec.md section 6, "Timestamps"),
// without the enclosing parentheses: the caller stores it as a string
// literal and the writer adds them. It
// takes the epoch from the caller rather than sampling time.Now()
// itself: the core never decides "what time is it" (that is the
// external CLI driver's job per spec.md section 1); it only knows how
// to format a time it is handed. A zero epoch suppresses any
// timestamp update and FormatTimestamp returns "", false.
func FormatTimestamp(epochSeconds int64) (string, bool) {
	if epochSeconds == 0 {
		return "", false
	}
	t := time.Unix(epochSeconds, 0).Local()
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	oh := offset / 3600
	om := (offset % 3600) / 60
	return fmt.Sprintf("D:%04d%02d%02d%02d%02d%02d%s%02d'%02d'",
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), sign, oh, om), true
}
