// Package mongostore persists alerts and notifications in MongoDB using
// the collections shared with the web application.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"pricealerts/internal/alert"
	"pricealerts/internal/store"
)

const (
	AlertsCollection        = "alerts"
	NotificationsCollection = "alertnotifications"
)

type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

type Store struct {
	client        *mongo.Client
	alerts        *mongo.Collection
	notifications *mongo.Collection
	log           zerolog.Logger
	now           func() time.Time
}

var (
	_ store.Store              = (*Store)(nil)
	_ store.NotificationReader = (*Store)(nil)
)

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri not set")
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetRetryWrites(true).
		SetRetryReads(true)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return New(client, cfg.Database, log), nil
}

// New wraps an established client.
func New(client *mongo.Client, database string, log zerolog.Logger) *Store {
	db := client.Database(database)
	return &Store{
		client:        client,
		alerts:        db.Collection(AlertsCollection),
		notifications: db.Collection(NotificationsCollection),
		log:           log.With().Str("component", "mongostore").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

// EnsureIndexes creates the indexes the web application declares.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.alerts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{
			{Key: "userId", Value: 1}, {Key: "symbol", Value: 1}, {Key: "alertType", Value: 1},
			{Key: "condition", Value: 1}, {Key: "threshold", Value: 1}, {Key: "frequency", Value: 1},
		}},
	})
	if err != nil {
		return fmt.Errorf("alerts indexes: %w", err)
	}
	_, err = s.notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "alertId", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}, {Key: "triggeredAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("notification indexes: %w", err)
	}
	return nil
}

// LoadActiveAlerts skips documents that fail validation.
func (s *Store) LoadActiveAlerts(ctx context.Context) ([]alert.Alert, error) {
	cur, err := s.alerts.Find(ctx, bson.D{{Key: "isActive", Value: true}})
	if err != nil {
		return nil, fmt.Errorf("find active alerts: %w", err)
	}
	defer cur.Close(ctx)

	var out []alert.Alert
	for cur.Next(ctx) {
		var doc alertDoc
		if err := cur.Decode(&doc); err != nil {
			s.log.Warn().Err(err).Msg("skip undecodable alert")
			continue
		}
		a, err := doc.toAlert()
		if err != nil {
			s.log.Warn().Err(err).Str("alert_id", doc.ID.Hex()).Msg("skip invalid alert")
			continue
		}
		out = append(out, a)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate active alerts: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateAlert(ctx context.Context, id string, u alert.StateUpdate) error {
	oid, err := parseID(id)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	res, err := s.alerts.UpdateOne(ctx, claimFilter(oid, u.ExpectedLastNotifiedAt), claimUpdate(u, s.now()))
	if err != nil {
		return fmt.Errorf("update alert %s: %w", id, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}
	n, err := s.alerts.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("update alert %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update alert %s: %w", id, store.ErrNotFound)
	}
	return fmt.Errorf("update alert %s: %w", id, store.ErrConflict)
}

func (s *Store) InsertNotification(ctx context.Context, d alert.Draft) (alert.Notification, error) {
	doc := fromDraft(d, s.now())
	res, err := s.notifications.InsertOne(ctx, doc)
	if err != nil {
		return alert.Notification{}, fmt.Errorf("insert notification for alert %s: %w", d.AlertID, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toNotification(), nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]alert.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "triggeredAt", Value: -1}}).
		SetLimit(int64(store.Limit(limit, 0)))
	cur, err := s.notifications.Find(ctx, bson.D{{Key: "userId", Value: userID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	out := make([]alert.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toNotification())
	}
	return out, nil
}

func (s *Store) MarkNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.notifications.UpdateMany(ctx,
		bson.D{{Key: "userId", Value: userID}, {Key: "read", Value: false}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "read", Value: true}, {Key: "updatedAt", Value: s.now()}}}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}
