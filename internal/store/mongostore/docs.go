package mongostore

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pricealerts/internal/alert"
	"pricealerts/internal/symbols"
)

// alertDoc mirrors the documents the web application writes to "alerts".
type alertDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	UserID            string             `bson:"userId"`
	Symbol            string             `bson:"symbol"`
	Company           string             `bson:"company"`
	AlertName         string             `bson:"alertName"`
	AlertType         string             `bson:"alertType"`
	Condition         string             `bson:"condition"`
	Threshold         float64            `bson:"threshold"`
	Frequency         string             `bson:"frequency"`
	IsActive          bool               `bson:"isActive"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         *time.Time         `bson:"updatedAt,omitempty"`
	LastTriggeredAt   *time.Time         `bson:"lastTriggeredAt,omitempty"`
	LastNotifiedAt    *time.Time         `bson:"lastNotifiedAt,omitempty"`
	LastPrice         *float64           `bson:"lastPrice,omitempty"`
	LastChangePercent *float64           `bson:"lastChangePercent,omitempty"`
}

// notificationDoc mirrors "alertnotifications".
type notificationDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"userId"`
	AlertID       string             `bson:"alertId"`
	Symbol        string             `bson:"symbol"`
	Company       string             `bson:"company"`
	Message       string             `bson:"message"`
	Price         *float64           `bson:"price,omitempty"`
	ChangePercent *float64           `bson:"changePercent,omitempty"`
	TriggeredAt   time.Time          `bson:"triggeredAt"`
	Read          bool               `bson:"read"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d alertDoc) toAlert() (alert.Alert, error) {
	cond, err := alert.ParseCondition(d.Condition)
	if err != nil {
		return alert.Alert{}, err
	}
	freq, err := alert.ParseFrequency(d.Frequency)
	if err != nil {
		return alert.Alert{}, err
	}
	typ := d.AlertType
	if typ == "" {
		typ = alert.TypePrice
	}
	a := alert.Alert{
		ID:                d.ID.Hex(),
		UserID:            d.UserID,
		Symbol:            symbols.Normalize(d.Symbol),
		Company:           d.Company,
		Name:              d.AlertName,
		Type:              typ,
		Condition:         cond,
		Threshold:         d.Threshold,
		Frequency:         freq,
		Active:            d.IsActive,
		CreatedAt:         d.CreatedAt,
		LastTriggeredAt:   d.LastTriggeredAt,
		LastNotifiedAt:    d.LastNotifiedAt,
		LastPrice:         d.LastPrice,
		LastChangePercent: d.LastChangePercent,
	}
	return a, a.Validate()
}

func fromDraft(d alert.Draft, now time.Time) notificationDoc {
	return notificationDoc{
		UserID:        d.UserID,
		AlertID:       d.AlertID,
		Symbol:        symbols.Normalize(d.Symbol),
		Company:       d.Company,
		Message:       d.Message,
		Price:         d.Price,
		ChangePercent: d.ChangePercent,
		TriggeredAt:   d.TriggeredAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (d notificationDoc) toNotification() alert.Notification {
	return alert.Notification{
		Draft: alert.Draft{
			UserID:        d.UserID,
			AlertID:       d.AlertID,
			Symbol:        d.Symbol,
			Company:       d.Company,
			Message:       d.Message,
			Price:         d.Price,
			ChangePercent: d.ChangePercent,
			TriggeredAt:   d.TriggeredAt,
		},
		ID:        d.ID.Hex(),
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("alert id %q: %w", id, err)
	}
	return oid, nil
}

// claimFilter matches the alert only while it is active and still carries
// the notification time the sweep loaded. A nil expectation matches both
// a null and a missing field.
func claimFilter(oid primitive.ObjectID, expected *time.Time) bson.D {
	var last any
	if expected != nil {
		last = *expected
	}
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "isActive", Value: true},
		{Key: "lastNotifiedAt", Value: last},
	}
}

func claimUpdate(u alert.StateUpdate, now time.Time) bson.D {
	set := bson.D{
		{Key: "lastTriggeredAt", Value: u.LastTriggeredAt},
		{Key: "lastNotifiedAt", Value: u.LastNotifiedAt},
		{Key: "lastPrice", Value: u.LastPrice},
		{Key: "updatedAt", Value: now},
	}
	if u.LastChangePercent != nil {
		set = append(set, bson.E{Key: "lastChangePercent", Value: *u.LastChangePercent})
	}
	if u.Deactivate {
		set = append(set, bson.E{Key: "isActive", Value: false})
	}
	return bson.D{{Key: "$set", Value: set}}
}
