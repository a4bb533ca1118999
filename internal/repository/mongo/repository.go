package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bitserve/internal/domain"
)

// Repository persists torrent session records. The info hash is the document
// id, so Put is a natural upsert and restarts converge on one record per
// torrent.
type Repository struct {
	collection *mongo.Collection
}

type torrentDoc struct {
	ID        string `bson:"_id"`
	Name      string `bson:"name"`
	Status    string `bson:"status"`
	Source    []byte `bson:"source"`
	AddedAt   int64  `bson:"addedAt"`
	UpdatedAt int64  `bson:"updatedAt"`
}

func NewRepository(client *mongo.Client, dbName, collectionName string) *Repository {
	return &Repository{collection: client.Database(dbName).Collection(collectionName)}
}

func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.collection == nil {
		return nil
	}
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "addedAt", Value: -1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (r *Repository) Put(ctx context.Context, record domain.TorrentRecord) error {
	doc := toDoc(record)
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *Repository) Get(ctx context.Context, hash domain.InfoHash) (domain.TorrentRecord, error) {
	var doc torrentDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": string(hash)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.TorrentRecord{}, domain.ErrNotFound
		}
		return domain.TorrentRecord{}, err
	}
	return fromDoc(doc), nil
}

func (r *Repository) Delete(ctx context.Context, hash domain.InfoHash) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": string(hash)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) LoadAll(ctx context.Context) ([]domain.TorrentRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "addedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []torrentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]domain.TorrentRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, fromDoc(doc))
	}
	return records, nil
}

func toDoc(record domain.TorrentRecord) torrentDoc {
	return torrentDoc{
		ID:        string(record.InfoHash),
		Name:      record.Name,
		Status:    string(record.Status),
		Source:    record.Source,
		AddedAt:   record.AddedAt.Unix(),
		UpdatedAt: record.UpdatedAt.Unix(),
	}
}

func fromDoc(doc torrentDoc) domain.TorrentRecord {
	return domain.TorrentRecord{
		InfoHash:  domain.InfoHash(doc.ID),
		Name:      doc.Name,
		Status:    domain.TorrentStatus(doc.Status),
		Source:    doc.Source,
		AddedAt:   timeFromUnix(doc.AddedAt),
		UpdatedAt: timeFromUnix(doc.UpdatedAt),
	}
}

func timeFromUnix(value int64) time.Time {
	return time.Unix(value, 0).UTC()
}
