package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"board/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditLog appends moderation events to a MongoDB collection.
type AuditLog struct {
	Client *mongo.Client
	Events *mongo.Collection
}

// auditDocument is the stored shape of a moderation event.
type auditDocument struct {
	Kind       string    `bson:"kind"`
	ActorID    string    `bson:"actorId"`
	TargetType string    `bson:"targetType,omitempty"`
	TargetID   string    `bson:"targetId"`
	Detail     string    `bson:"detail,omitempty"`
	OccurredAt time.Time `bson:"occurredAt"`
}

func NewAuditLog(uri, dbName string) (*AuditLog, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	events := client.Database(dbName).Collection("moderation_events")
	_, err = events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "occurredAt", Value: -1}},
	})
	if err != nil {
		slog.Warn("Failed to create audit index", "error", err)
	}

	slog.Info("Connected to MongoDB audit log", "database", dbName)
	return &AuditLog{Client: client, Events: events}, nil
}

// Publish stores the event. Failures are logged and never reach the caller.
func (a *AuditLog) Publish(ctx context.Context, event models.ModerationEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	doc := auditDocument{
		Kind:       string(event.Kind),
		ActorID:    event.ActorID.String(),
		TargetType: string(event.TargetType),
		TargetID:   event.TargetID.String(),
		Detail:     event.Detail,
		OccurredAt: event.OccurredAt,
	}
	if _, err := a.Events.InsertOne(ctx, doc); err != nil {
		slog.Error("Failed to write moderation audit event", "kind", event.Kind, "error", err)
	}
}

// Recent returns the newest audit entries.
func (a *AuditLog) Recent(ctx context.Context, limit int64) ([]models.ModerationEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurredAt", Value: -1}}).SetLimit(limit)
	cursor, err := a.Events.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %v", err)
	}
	defer cursor.Close(ctx)

	var docs []auditDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode audit log: %v", err)
	}

	events := make([]models.ModerationEvent, 0, len(docs))
	for _, doc := range docs {
		events = append(events, doc.toEvent())
	}
	return events, nil
}

func (a *AuditLog) Close(ctx context.Context) error {
	return a.Client.Disconnect(ctx)
}

func (d auditDocument) toEvent() models.ModerationEvent {
	event := models.ModerationEvent{
		Kind:       models.EventKind(d.Kind),
		TargetType: models.TargetType(d.TargetType),
		Detail:     d.Detail,
		OccurredAt: d.OccurredAt,
	}
	// ids were written by Publish; a malformed one decodes as uuid.Nil
	event.ActorID, _ = uuid.Parse(d.ActorID)
	event.TargetID, _ = uuid.Parse(d.TargetID)
	return event
}
