package hamper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDraftNotFound is returned when a shopper has no saved draft.
var ErrDraftNotFound = errors.New("hamper draft not found")

// DraftStore persists one draft per shopper. Writes are last-write-wins.
type DraftStore interface {
	Find(ctx context.Context, userID uuid.UUID) (*StoredDraft, error)
	Upsert(ctx context.Context, userID uuid.UUID, payload Payload) (*StoredDraft, error)
	Delete(ctx context.Context, userID uuid.UUID) (bool, error)
}

// StoredDraft is a draft document as persisted.
type StoredDraft struct {
	UserID    string    `bson:"_id" json:"-"`
	Payload   Payload   `bson:"payload" json:"draft"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
	ExpiresAt time.Time `bson:"expires_at" json:"expiresAt"`
}

// MongoRepository stores drafts in a MongoDB collection keyed by user id.
type MongoRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

// NewMongoRepository binds the repository to the drafts collection.
func NewMongoRepository(collection *mongo.Collection, ttl time.Duration) (*MongoRepository, error) {
	if collection == nil {
		return nil, fmt.Errorf("drafts collection required")
	}
	return &MongoRepository{collection: collection, ttl: ttl, now: time.Now}, nil
}

// EnsureIndexes creates the TTL index that expires abandoned drafts.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("hamper_drafts_expires_at"),
	})
	return err
}

func (r *MongoRepository) Find(ctx context.Context, userID uuid.UUID) (*StoredDraft, error) {
	var doc StoredDraft
	filter := bson.M{"_id": userID.String(), "expires_at": bson.M{"$gt": r.now().UTC()}}
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *MongoRepository) Upsert(ctx context.Context, userID uuid.UUID, payload Payload) (*StoredDraft, error) {
	doc := r.document(userID, payload)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.UserID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *MongoRepository) Delete(ctx context.Context, userID uuid.UUID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID.String()})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) document(userID uuid.UUID, payload Payload) StoredDraft {
	now := r.now().UTC()
	if payload.ProductIDs == nil {
		payload.ProductIDs = []string{}
	}
	return StoredDraft{
		UserID:    userID.String(),
		Payload:   payload,
		UpdatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}
}
