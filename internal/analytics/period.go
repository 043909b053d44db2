package analytics

import "fmt"

// Period is a reporting window of calendar days ending today, today
// included.
type Period string

const (
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period90d Period = "90d"

	DefaultPeriod = Period7d
)

// ParsePeriod maps a query value to a Period. Empty input selects the
// default window.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "":
		return DefaultPeriod, nil
	case Period7d, Period30d, Period90d:
		return Period(raw), nil
	}
	return "", fmt.Errorf("unknown period %q", raw)
}

// Days returns the window length.
func (p Period) Days() int {
	switch p {
	case Period30d:
		return 30
	case Period90d:
		return 90
	default:
		return 7
	}
}
