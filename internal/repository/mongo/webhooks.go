package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bitserve/internal/domain"
)

// WebhookRepository persists webhook subscriptions so registrations survive
// restarts alongside the torrents they watch.
type WebhookRepository struct {
	collection *mongo.Collection
}

type webhookDoc struct {
	Event     string `bson:"event"`
	URL       string `bson:"url"`
	CreatedAt int64  `bson:"createdAt"`
}

func NewWebhookRepository(client *mongo.Client, dbName, collectionName string) *WebhookRepository {
	return &WebhookRepository{collection: client.Database(dbName).Collection(collectionName)}
}

func (r *WebhookRepository) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.collection == nil {
		return nil
	}
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event", Value: 1}, {Key: "url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (r *WebhookRepository) Add(ctx context.Context, sub domain.WebhookSubscription) error {
	doc := webhookDoc{
		Event:     string(sub.Event),
		URL:       sub.URL,
		CreatedAt: time.Now().UTC().Unix(),
	}
	filter := bson.M{"event": doc.Event, "url": doc.URL}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, doc, opts)
	return err
}

func (r *WebhookRepository) List(ctx context.Context) ([]domain.WebhookSubscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []webhookDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	subs := make([]domain.WebhookSubscription, 0, len(docs))
	for _, doc := range docs {
		subs = append(subs, domain.WebhookSubscription{
			Event: domain.EventType(doc.Event),
			URL:   doc.URL,
		})
	}
	return subs, nil
}
