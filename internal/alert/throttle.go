package alert

import "time"

// ShouldNotify reports whether an alert with frequency f that last
// notified at last may notify again at now. The boundary is inclusive.
func ShouldNotify(f Frequency, last *time.Time, now time.Time) bool {
    if last == nil { return true }
    switch f {
    case PerHour, PerDay:
        return now.Sub(*last) >= f.Interval()
    }
    return false
}
