package assets

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ITPORTAL-backend/internal/platform/store"
)

// AssetStore is the slice of the Entity Store the asset features need:
// point reads, field-equality finds and whole-document saves.
type AssetStore interface {
	Get(ctx context.Context, id string) (*Asset, error) // (nil, nil) when missing
	List(ctx context.Context, q SearchQuery) ([]Asset, error)
	Insert(ctx context.Context, a *Asset) error
	Save(ctx context.Context, a *Asset) error
	Delete(ctx context.Context, id string) (int64, error)
}

type Store struct{ col *mongo.Collection }

func NewStore(mdb *mongo.Database) *Store {
	return &Store{col: mdb.Collection(store.ColAssets)}
}

func (s *Store) Get(ctx context.Context, id string) (*Asset, error) {
	var a Asset
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) List(ctx context.Context, q SearchQuery) ([]Asset, error) {
	filter := bson.M{}
	if q.CategoryID != nil {
		filter["category_id"] = *q.CategoryID
	}
	if q.Status != nil {
		filter["status"] = *q.Status
	}
	if q.AssigneeID != nil {
		filter["assignee_id"] = *q.AssigneeID
	}
	if q.Keyword != nil && *q.Keyword != "" {
		// name / serial_number / remark の部分一致（大文字小文字無視）
		re := bson.M{"$regex": *q.Keyword, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"serial_number": re},
			bson.M{"remark": re},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(1000)

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Asset
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, a *Asset) error {
	_, err := s.col.InsertOne(ctx, a)
	return err
}

// Save replaces the whole document; the store has no partial-update path so
// the invariant checks only ever run against a full Asset value.
func (s *Store) Save(ctx context.Context, a *Asset) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
