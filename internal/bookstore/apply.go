package bookstore

import (
	"fmt"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"math"
	"time"
)

// UnknownBookError is returned when an order line references a book that
// does not exist while the total is being priced.
type UnknownBookError struct{ BookID primitive.ObjectID }

func (e *UnknownBookError) Error() string {
	return fmt.Sprintf("book not found: %s", e.BookID.Hex())
}

// The constructors below expect validated input; references are already
// known to be well-formed ObjectIDs.

func NewUser(in UserCreate, now time.Time) User {
	u := User{
		ID:        primitive.NewObjectID(),
		FirstName: *in.FirstName,
		LastName:  *in.LastName,
		Email:     *in.Email,
		Role:      RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	set(&u.Role, in.Role)
	return u
}

func (u *User) Apply(in UserUpdate, now time.Time) {
	set(&u.FirstName, in.FirstName)
	set(&u.LastName, in.LastName)
	set(&u.Email, in.Email)
	set(&u.Role, in.Role)
	u.UpdatedAt = now
}

func NewBook(in BookCreate, now time.Time) Book {
	b := Book{
		ID:        primitive.NewObjectID(),
		Title:     *in.Title,
		Author:    *in.Author,
		Price:     float64(*in.Price),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Stock != nil {
		b.Stock = int(*in.Stock)
	}
	return b
}

func (b *Book) Apply(in BookUpdate, now time.Time) {
	set(&b.Title, in.Title)
	set(&b.Author, in.Author)
	if in.Price != nil {
		b.Price = float64(*in.Price)
	}
	if in.Stock != nil {
		b.Stock = int(*in.Stock)
	}
	b.UpdatedAt = now
}

func NewOrder(in OrderCreate, now time.Time) Order {
	o := Order{
		ID:        primitive.NewObjectID(),
		UserID:    mustID(*in.UserID),
		Items:     lineItems(in.Items),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.TotalAmount != nil {
		o.TotalAmount = float64(*in.TotalAmount)
	}
	set(&o.Status, in.Status)
	return o
}

// NeedsPricing reports whether the server has to compute the total.
func (in *OrderCreate) NeedsPricing() bool { return in.TotalAmount == nil }

func (in *OrderUpdate) NeedsPricing() bool { return in.Items != nil && in.TotalAmount == nil }

func (o *Order) Apply(in OrderUpdate, now time.Time) {
	if in.UserID != nil {
		o.UserID = mustID(*in.UserID)
	}
	if in.Items != nil {
		o.Items = lineItems(in.Items)
	}
	if in.TotalAmount != nil {
		o.TotalAmount = float64(*in.TotalAmount)
	}
	set(&o.Status, in.Status)
	o.UpdatedAt = now
}

// BookIDs lists the distinct books referenced by the order lines.
func (o *Order) BookIDs() []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(o.Items))
	out := make([]primitive.ObjectID, 0, len(o.Items))
	for _, it := range o.Items {
		if !seen[it.BookID] {
			seen[it.BookID] = true
			out = append(out, it.BookID)
		}
	}
	return out
}

// Price sets TotalAmount from unit prices, rounded to cents.
func (o *Order) Price(prices map[primitive.ObjectID]float64) error {
	var total float64
	for _, it := range o.Items {
		p, ok := prices[it.BookID]
		if !ok {
			return &UnknownBookError{BookID: it.BookID}
		}
		total += p * float64(it.Quantity)
	}
	o.TotalAmount = math.Round(total*100) / 100
	return nil
}

func NewReview(in ReviewCreate, now time.Time) Review {
	r := Review{
		ID:        primitive.NewObjectID(),
		UserID:    mustID(*in.UserID),
		BookID:    mustID(*in.BookID),
		Rating:    int(*in.Rating),
		CreatedAt: now,
		UpdatedAt: now,
	}
	set(&r.Comment, in.Comment)
	return r
}

func (r *Review) Apply(in ReviewUpdate, now time.Time) {
	if in.Rating != nil {
		r.Rating = int(*in.Rating)
	}
	set(&r.Comment, in.Comment)
	r.UpdatedAt = now
}

func lineItems(in []LineItemInput) []LineItem {
	out := make([]LineItem, 0, len(in))
	for _, it := range in {
		out = append(out, LineItem{BookID: mustID(*it.BookID), Quantity: int(*it.Quantity)})
	}
	return out
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func mustID(s string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		panic(fmt.Sprintf("bookstore: unvalidated object id %q", s))
	}
	return id
}
