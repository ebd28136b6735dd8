package history

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ITPORTAL-backend/internal/platform/store"
)

// EventStore is the append/read slice of the Entity Store for history records.
// There is deliberately no update or delete method.
type EventStore interface {
	Insert(ctx context.Context, e *Event) error
	ListByAsset(ctx context.Context, assetID string) ([]Event, error)
	// LastAssignmentExcluding returns the most recent assignment event for the
	// asset whose assigned_to differs from excludeUserID, or (nil, nil).
	LastAssignmentExcluding(ctx context.Context, assetID, excludeUserID string) (*Event, error)
}

type Store struct{ col *mongo.Collection }

func NewStore(mdb *mongo.Database) EventStore {
	return &Store{col: mdb.Collection(store.ColHistory)}
}

func (s *Store) Insert(ctx context.Context, e *Event) error {
	_, err := s.col.InsertOne(ctx, e)
	return err
}

// createdAt降順。同時刻はULIDの_id降順で安定させる。
var historySort = bson.D{
	{Key: "created_at", Value: -1},
	{Key: "_id", Value: -1},
}

func (s *Store) ListByAsset(ctx context.Context, assetID string) ([]Event, error) {
	opts := options.Find().SetSort(historySort)
	cur, err := s.col.Find(ctx, bson.M{"asset_id": assetID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) LastAssignmentExcluding(ctx context.Context, assetID, excludeUserID string) (*Event, error) {
	filter := bson.M{
		"asset_id":               assetID,
		"kind":                   KindAssignment,
		"assignment.assigned_to": bson.M{"$ne": excludeUserID},
	}
	opts := options.FindOne().SetSort(historySort)

	var e Event
	err := s.col.FindOne(ctx, filter, opts).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
