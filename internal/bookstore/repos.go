package bookstore

import (
	"context"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Users struct{ *Collection[User] }

func NewUsers(db *mongo.Database) *Users {
	return &Users{NewCollection[User](db, CollUsers)}
}

// EmailTaken is a fast-path check; the unique index on email is the
// authority. except excludes the user being updated.
func (u *Users) EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (bool, error) {
	filter := bson.M{"email": email}
	if !except.IsZero() {
		filter["_id"] = bson.M{"$ne": except}
	}
	n, err := u.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

type Books struct{ *Collection[Book] }

func NewBooks(db *mongo.Database) *Books {
	return &Books{NewCollection[Book](db, CollBooks)}
}

// Prices returns the unit price of each existing book among ids.
func (b *Books) Prices(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]float64, error) {
	out := make(map[primitive.ObjectID]float64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "price": 1})
	cur, err := b.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find book prices: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Price float64            `bson:"price"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode book price: %w", err)
		}
		out[row.ID] = row.Price
	}
	return out, cur.Err()
}

func NewOrders(db *mongo.Database) *Collection[Order] {
	return NewCollection[Order](db, CollOrders)
}

func NewReviews(db *mongo.Database) *Collection[Review] {
	return NewCollection[Review](db, CollReviews)
}

// EnsureIndexes creates the unique indexes the API relies on: one user per
// email and one review per (user, book).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(CollUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	}); err != nil {
		return fmt.Errorf("users email index: %w", err)
	}
	if _, err := db.Collection(CollReviews).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "bookId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_book"),
	}); err != nil {
		return fmt.Errorf("reviews user/book index: %w", err)
	}
	return nil
}
