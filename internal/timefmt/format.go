package timefmt

import "time"

// Options selects which portion of a timestamp Format emits.
// OnlyDate takes priority when both flags are set.
type Options struct {
	OnlyDate bool
	OnlyTime bool
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Format renders t using its local calendar and clock fields.
//
//	OnlyDate:  2024-01-08
//	OnlyTime:  13:05
//	neither:   2024-01-08 13:05
func Format(t time.Time, opts Options) string {
	t = t.Local()

	switch {
	case opts.OnlyDate:
		return t.Format(dateLayout)
	case opts.OnlyTime:
		return t.Format(clockLayout)
	default:
		return t.Format(dateLayout + " " + clockLayout)
	}
}

// FormatString parses s with Parse and formats the result.
func FormatString(s string, opts Options) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Format(t, opts), nil
}
