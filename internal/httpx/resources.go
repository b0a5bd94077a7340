package httpx

import (
	"context"
	"github.com/ariefcatur/go-bookstore-api/internal/apperr"
	"github.com/ariefcatur/go-bookstore-api/internal/bookstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// UserStore adds the email fast-path check. *bookstore.Users satisfies it.
type UserStore interface {
	Store[bookstore.User]
	EmailTaken(ctx context.Context, email string, except primitive.ObjectID) (bool, error)
}

// BookStore adds price lookup for order totals. *bookstore.Books satisfies it.
type BookStore interface {
	Store[bookstore.Book]
	Prices(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]float64, error)
}

const errEmailTaken = "email already in use"

func usersResource(users UserStore) *resource[bookstore.User, *bookstore.User, bookstore.UserCreate, bookstore.UserUpdate] {
	return &resource[bookstore.User, *bookstore.User, bookstore.UserCreate, bookstore.UserUpdate]{
		name:     bookstore.ResourceUser,
		path:     "/users",
		store:    users,
		conflict: errEmailTaken,
		newDoc: func(ctx context.Context, in *bookstore.UserCreate) (bookstore.User, error) {
			taken, err := users.EmailTaken(ctx, *in.Email, primitive.NilObjectID)
			if err != nil {
				return bookstore.User{}, err
			}
			if taken {
				return bookstore.User{}, apperr.Conflict(errEmailTaken)
			}
			return bookstore.NewUser(*in, bookstore.Now()), nil
		},
		applyDoc: func(ctx context.Context, u *bookstore.User, in *bookstore.UserUpdate, now time.Time) error {
			if in.Email != nil && *in.Email != u.Email {
				taken, err := users.EmailTaken(ctx, *in.Email, u.ID)
				if err != nil {
					return err
				}
				if taken {
					return apperr.Conflict(errEmailTaken)
				}
			}
			u.Apply(*in, now)
			return nil
		},
	}
}

func booksResource(books BookStore) *resource[bookstore.Book, *bookstore.Book, bookstore.BookCreate, bookstore.BookUpdate] {
	return &resource[bookstore.Book, *bookstore.Book, bookstore.BookCreate, bookstore.BookUpdate]{
		name:     bookstore.ResourceBook,
		path:     "/books",
		store:    books,
		conflict: "book already exists",
		newDoc: func(_ context.Context, in *bookstore.BookCreate) (bookstore.Book, error) {
			return bookstore.NewBook(*in, bookstore.Now()), nil
		},
		applyDoc: func(_ context.Context, b *bookstore.Book, in *bookstore.BookUpdate, now time.Time) error {
			b.Apply(*in, now)
			return nil
		},
	}
}

func ordersResource(orders Store[bookstore.Order], books BookStore) *resource[bookstore.Order, *bookstore.Order, bookstore.OrderCreate, bookstore.OrderUpdate] {
	price := func(ctx context.Context, o *bookstore.Order) error {
		prices, err := books.Prices(ctx, o.BookIDs())
		if err != nil {
			return err
		}
		return o.Price(prices)
	}
	return &resource[bookstore.Order, *bookstore.Order, bookstore.OrderCreate, bookstore.OrderUpdate]{
		name:     bookstore.ResourceOrder,
		path:     "/orders",
		store:    orders,
		conflict: "order already exists",
		newDoc: func(ctx context.Context, in *bookstore.OrderCreate) (bookstore.Order, error) {
			o := bookstore.NewOrder(*in, bookstore.Now())
			if in.NeedsPricing() {
				if err := price(ctx, &o); err != nil {
					return bookstore.Order{}, err
				}
			}
			return o, nil
		},
		applyDoc: func(ctx context.Context, o *bookstore.Order, in *bookstore.OrderUpdate, now time.Time) error {
			o.Apply(*in, now)
			if in.NeedsPricing() {
				return price(ctx, o)
			}
			return nil
		},
	}
}

func reviewsResource(reviews Store[bookstore.Review]) *resource[bookstore.Review, *bookstore.Review, bookstore.ReviewCreate, bookstore.ReviewUpdate] {
	return &resource[bookstore.Review, *bookstore.Review, bookstore.ReviewCreate, bookstore.ReviewUpdate]{
		name:     bookstore.ResourceReview,
		path:     "/reviews",
		store:    reviews,
		conflict: "user has already reviewed this book",
		newDoc: func(_ context.Context, in *bookstore.ReviewCreate) (bookstore.Review, error) {
			return bookstore.NewReview(*in, bookstore.Now()), nil
		},
		applyDoc: func(_ context.Context, rv *bookstore.Review, in *bookstore.ReviewUpdate, now time.Time) error {
			rv.Apply(*in, now)
			return nil
		},
	}
}
