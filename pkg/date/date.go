package date

import "time"

const (
	reportFormat = "2006-01-02 15:04:05 MST"
)

// ToReportFormat renders t in UTC for run reports; the zero time renders empty.
func ToReportFormat(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(reportFormat)
} // ./ToReportFormat
