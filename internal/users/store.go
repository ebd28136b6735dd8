package users

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ITPORTAL-backend/internal/platform/store"
)

type UserStore interface {
	Get(ctx context.Context, id string) (*User, error) // (nil, nil) when missing
	List(ctx context.Context) ([]User, error)
	Insert(ctx context.Context, u *User) error
	Replace(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) (int64, error)
}

type Store struct{ col *mongo.Collection }

func NewStore(mdb *mongo.Database) UserStore {
	return &Store{col: mdb.Collection(store.ColUsers)}
}

func (s *Store) Get(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, u *User) error {
	_, err := s.col.InsertOne(ctx, u)
	return err
}

func (s *Store) Replace(ctx context.Context, u *User) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
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
