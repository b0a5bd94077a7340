package bookstore

import (
	"context"
	"errors"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrNoChanges = errors.New("no changes detected")
)

// Collection is the CRUD repository shared by all resource types. T must be
// a struct whose "_id" is a primitive.ObjectID set by the caller.
type Collection[T any] struct {
	coll *mongo.Collection
}

func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{coll: db.Collection(name)}
}

// List returns every document in natural order.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	cur, err := c.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.coll.Name(), err)
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id primitive.ObjectID) (T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("find %s %s: %w", c.coll.Name(), id.Hex(), err)
	}
	return doc, nil
}

func (c *Collection[T]) Insert(ctx context.Context, doc T) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return translate(err, "insert "+c.coll.Name())
	}
	return nil
}

// Replace writes doc over the stored document with the same id.
func (c *Collection[T]) Replace(ctx context.Context, id primitive.ObjectID, doc T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err, "replace "+c.coll.Name())
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	if res.ModifiedCount == 0 {
		return ErrNoChanges
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.coll.Name(), id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error, op string) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
