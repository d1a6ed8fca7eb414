package shared

import "time"

const (
	// StoreDateLayout is the calendar date format persisted to the store.
	StoreDateLayout = "2006-01-02"
	// DisplayDateLayout is the format used by UI-facing payloads.
	DisplayDateLayout = "02/01/2006"
)

// ParseDisplayDate converts a dd/MM/yyyy string into a time.Time. Falls
// back to the store layout so API clients may send either form.
func ParseDisplayDate(s string) (time.Time, error) {
	if t, err := time.Parse(DisplayDateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(StoreDateLayout, s)
}

// FormatDisplayDate renders a time as dd/MM/yyyy.
func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

// FormatStoreDate renders a time as yyyy-MM-dd.
func FormatStoreDate(t time.Time) string {
	return t.Format(StoreDateLayout)
}
