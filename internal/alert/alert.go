// Package alert holds the alert model and the pure rules that decide
// whether an alert fires.
package alert

import (
    "errors"
    "fmt"
    "math"
    "strconv"
    "strings"
    "time"
)

type Condition string

const (
    GreaterThan Condition = "gt"
    LessThan    Condition = "lt"
)

// ParseCondition accepts the stored short form and the usual aliases.
func ParseCondition(s string) (Condition, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "gt", "greater-than", "greater_than", "above", ">":
        return GreaterThan, nil
    case "lt", "less-than", "less_than", "below", "<":
        return LessThan, nil
    }
    return "", fmt.Errorf("unknown condition %q", s)
}

// Word is the verb used in notification messages.
func (c Condition) Word() string {
    if c == LessThan { return "below" }
    return "above"
}

// Hit reports whether price satisfies the condition. Equality counts.
func (c Condition) Hit(price, threshold float64) bool {
    switch c {
    case GreaterThan:
        return price >= threshold
    case LessThan:
        return price <= threshold
    }
    return false
}

type Frequency string

const (
    Once    Frequency = "once"
    PerHour Frequency = "per_hour"
    PerDay  Frequency = "per_day"
)

func ParseFrequency(s string) (Frequency, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "once":
        return Once, nil
    case "per_hour", "per-hour", "hourly":
        return PerHour, nil
    case "per_day", "per-day", "daily":
        return PerDay, nil
    }
    return "", fmt.Errorf("unknown frequency %q", s)
}

// Interval is the minimum gap between notifications; zero for Once.
func (f Frequency) Interval() time.Duration {
    switch f {
    case PerHour:
        return time.Hour
    case PerDay:
        return 24 * time.Hour
    }
    return 0
}

const TypePrice = "price"

// Alert is a user's standing price condition plus its trigger state.
type Alert struct {
    ID        string    `json:"id"`
    UserID    string    `json:"user_id"`
    Symbol    string    `json:"symbol"`
    Company   string    `json:"company,omitempty"`
    Name      string    `json:"name,omitempty"`
    Type      string    `json:"type"`
    Condition Condition `json:"condition"`
    Threshold float64   `json:"threshold"`
    Frequency Frequency `json:"frequency"`
    Active    bool      `json:"active"`
    CreatedAt time.Time `json:"created_at"`

    LastTriggeredAt   *time.Time `json:"last_triggered_at,omitempty"`
    LastNotifiedAt    *time.Time `json:"last_notified_at,omitempty"`
    LastPrice         *float64   `json:"last_price,omitempty"`
    LastChangePercent *float64   `json:"last_change_percent,omitempty"`
}

var ErrInvalid = errors.New("invalid alert")

// Validate rejects alerts the evaluator cannot reason about.
func (a Alert) Validate() error {
    if strings.TrimSpace(a.Symbol) == "" {
        return fmt.Errorf("%w: empty symbol", ErrInvalid)
    }
    if math.IsNaN(a.Threshold) || math.IsInf(a.Threshold, 0) {
        return fmt.Errorf("%w: threshold is not finite", ErrInvalid)
    }
    if _, err := ParseCondition(string(a.Condition)); err != nil {
        return fmt.Errorf("%w: %v", ErrInvalid, err)
    }
    if _, err := ParseFrequency(string(a.Frequency)); err != nil {
        return fmt.Errorf("%w: %v", ErrInvalid, err)
    }
    return nil
}

// Draft is a notification not yet persisted.
type Draft struct {
    UserID        string    `json:"user_id"`
    AlertID       string    `json:"alert_id"`
    Symbol        string    `json:"symbol"`
    Company       string    `json:"company,omitempty"`
    Message       string    `json:"message"`
    Price         *float64  `json:"price,omitempty"`
    ChangePercent *float64  `json:"change_percent,omitempty"`
    TriggeredAt   time.Time `json:"triggered_at"`
}

// Notification is a persisted Draft.
type Notification struct {
    Draft
    ID        string    `json:"id"`
    Read      bool      `json:"read"`
    CreatedAt time.Time `json:"created_at"`
}

// StateUpdate is the trigger-state change recorded when an alert fires.
// ExpectedLastNotifiedAt is the value loaded before evaluation; stores
// apply the update only while the alert still carries it.
type StateUpdate struct {
    LastTriggeredAt        time.Time
    LastNotifiedAt         time.Time
    LastPrice              float64
    LastChangePercent      *float64
    Deactivate             bool
    ExpectedLastNotifiedAt *time.Time
}

// FormatThreshold renders v in its shortest decimal form: 150, 150.5.
func FormatThreshold(v float64) string {
    return strconv.FormatFloat(v, 'f', -1, 64)
}

// Message builds the notification text, e.g. "AAPL is above 150".
func Message(symbol string, c Condition, threshold float64) string {
    return fmt.Sprintf("%s is %s %s", symbol, c.Word(), FormatThreshold(threshold))
}
