package bookstore

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"testing"
)

func TestCollection(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get missing document", func(mt *mtest.T) {
		books := NewCollection[Book](mt.DB, CollBooks)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bookstore.books", mtest.FirstBatch))

		_, err := books.Get(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("get decodes document", func(mt *mtest.T) {
		books := NewCollection[Book](mt.DB, CollBooks)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bookstore.books", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "title", Value: "Dune"},
			{Key: "author", Value: "Herbert"},
			{Key: "price", Value: 15.5},
			{Key: "stock", Value: 0},
		}))

		b, err := books.Get(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, id, b.ID)
		assert.Equal(mt, "Dune", b.Title)
		assert.Equal(mt, 15.5, b.Price)
	})

	mt.Run("list returns all documents", func(mt *mtest.T) {
		books := NewCollection[Book](mt.DB, CollBooks)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bookstore.books", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "title", Value: "A"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "title", Value: "B"}},
		))

		list, err := books.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "A", list[0].Title)
		assert.Equal(mt, "B", list[1].Title)
	})

	mt.Run("insert duplicate key", func(mt *mtest.T) {
		users := NewCollection[User](mt.DB, CollUsers)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: bookstore.users index: uniq_email",
		}))

		err := users.Insert(ctx, User{ID: primitive.NewObjectID(), Email: "ada@example.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("replace without match", func(mt *mtest.T) {
		books := NewCollection[Book](mt.DB, CollBooks)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := books.Replace(ctx, primitive.NewObjectID(), Book{})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("replace without modification", func(mt *mtest.T) {
		books := NewCollection[Book](mt.DB, CollBooks)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}))

		err := books.Replace(ctx, primitive.NewObjectID(), Book{})
		assert.ErrorIs(mt, err, ErrNoChanges)
	})

	mt.Run("replace modified", func(mt *mtest.T) {
		books := NewCollection[Book](mt.DB, CollBooks)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, books.Replace(ctx, primitive.NewObjectID(), Book{}))
	})

	mt.Run("delete missing document", func(mt *mtest.T) {
		books := NewCollection[Book](mt.DB, CollBooks)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := books.Delete(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("email taken", func(mt *mtest.T) {
		users := &Users{NewCollection[User](mt.DB, CollUsers)}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bookstore.users", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}))

		taken, err := users.EmailTaken(ctx, "ada@example.com", primitive.NilObjectID)
		require.NoError(mt, err)
		assert.True(mt, taken)
	})

	mt.Run("book prices", func(mt *mtest.T) {
		books := &Books{NewCollection[Book](mt.DB, CollBooks)}
		b1 := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "bookstore.books", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: b1}, {Key: "price", Value: 9.99}},
		))

		prices, err := books.Prices(ctx, []primitive.ObjectID{b1, primitive.NewObjectID()})
		require.NoError(mt, err)
		assert.Equal(mt, map[primitive.ObjectID]float64{b1: 9.99}, prices)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())

		require.NoError(mt, EnsureIndexes(ctx, mt.DB))
	})

	mt.Run("ensure indexes stops at reviews", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Name:    "DuplicateKey",
			Message: "E11000 duplicate key error collection: bookstore.reviews",
		}))

		err := EnsureIndexes(ctx, mt.DB)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "reviews user/book index")
	})

	mt.Run("ensure indexes fails on conflicting index", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index already exists with different options",
		}))

		err := EnsureIndexes(ctx, mt.DB)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "users email index")
	})
}
