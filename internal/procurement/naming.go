package procurement

import (
	"fmt"
	"strings"
	"time"
)

const defaultSeriesDigits = 5

// SeriesKey is the expanded naming-series prefix and the width of its counter.
type SeriesKey struct {
	Prefix string
	Digits int
}

// Format renders the document name for counter value n.
func (k SeriesKey) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", k.Prefix, k.Digits, n)
}

// ParseSeries expands a dot-separated naming series such as
// "EDA-SPIMR-.YYYY.-.#####" for the given date. Date tokens YYYY, YY, MM and DD
// are substituted; the first run of '#' sets the counter width. A series without
// a counter part gets a five digit counter appended.
func ParseSeries(series string, at time.Time) (SeriesKey, error) {
	series = strings.TrimSpace(series)
	if series == "" {
		return SeriesKey{}, fmt.Errorf("%w: naming series required", ErrValidation)
	}
	var b strings.Builder
	digits := 0
	for _, part := range strings.Split(series, ".") {
		if digits > 0 {
			break
		}
		switch {
		case part == "":
			continue
		case strings.Trim(part, "#") == "":
			digits = len(part)
		case part == "YYYY":
			b.WriteString(at.Format("2006"))
		case part == "YY":
			b.WriteString(at.Format("06"))
		case part == "MM":
			b.WriteString(at.Format("01"))
		case part == "DD":
			b.WriteString(at.Format("02"))
		default:
			b.WriteString(part)
		}
	}
	if digits == 0 {
		digits = defaultSeriesDigits
	}
	return SeriesKey{Prefix: b.String(), Digits: digits}, nil
}
