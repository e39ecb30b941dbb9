package alert

import (
    "time"

    "pricealerts/internal/provider"
    "pricealerts/internal/symbols"
)

// Trigger pairs the notification and the state change of one firing alert.
type Trigger struct {
    Alert  Alert
    Draft  Draft
    Update StateUpdate
}

type Evaluation struct {
    Triggers  []Trigger
    Unpriced  int
    Missed    int
    Throttled int
}

func (e Evaluation) Notifications() []Draft {
    out := make([]Draft, 0, len(e.Triggers))
    for _, t := range e.Triggers { out = append(out, t.Draft) }
    return out
}

// Updates maps alert ID to its state change.
func (e Evaluation) Updates() map[string]StateUpdate {
    out := make(map[string]StateUpdate, len(e.Triggers))
    for _, t := range e.Triggers { out[t.Alert.ID] = t.Update }
    return out
}

// Evaluate decides which alerts fire at now given the resolved quotes.
// Inactive alerts and alerts without a usable quote are skipped.
// Each alert is judged on its own loaded state only.
func Evaluate(alerts []Alert, quotes map[string]provider.Quote, now time.Time) Evaluation {
    var ev Evaluation
    for _, a := range alerts {
        if !a.Active { continue }
        sym := symbols.Normalize(a.Symbol)
        q, ok := quotes[sym]
        if !ok || !q.Resolved() {
            ev.Unpriced++
            continue
        }
        price := *q.Price
        if !a.Condition.Hit(price, a.Threshold) {
            ev.Missed++
            continue
        }
        if !ShouldNotify(a.Frequency, a.LastNotifiedAt, now) {
            ev.Throttled++
            continue
        }
        ev.Triggers = append(ev.Triggers, Trigger{
            Alert: a,
            Draft: Draft{
                UserID:        a.UserID,
                AlertID:       a.ID,
                Symbol:        sym,
                Company:       a.Company,
                Message:       Message(sym, a.Condition, a.Threshold),
                Price:         floatPtr(price),
                ChangePercent: copyFloat(q.ChangePercent),
                TriggeredAt:   now,
            },
            Update: StateUpdate{
                LastTriggeredAt:        now,
                LastNotifiedAt:         now,
                LastPrice:              price,
                LastChangePercent:      copyFloat(q.ChangePercent),
                Deactivate:             a.Frequency == Once,
                ExpectedLastNotifiedAt: copyTime(a.LastNotifiedAt),
            },
        })
    }
    return ev
}

func floatPtr(v float64) *float64 { return &v }

func copyFloat(p *float64) *float64 {
    if p == nil { return nil }
    return floatPtr(*p)
}

func copyTime(p *time.Time) *time.Time {
    if p == nil { return nil }
    t := *p
    return &t
}
