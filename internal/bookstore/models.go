package bookstore

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Collection names.
const (
	CollUsers   = "users"
	CollBooks   = "books"
	CollOrders  = "orders"
	CollReviews = "reviews"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"` // stored lower-cased
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Book struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Author    string             `bson:"author" json:"author"`
	Price     float64            `bson:"price" json:"price"`
	Stock     int                `bson:"stock" json:"stock"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type LineItem struct {
	BookID   primitive.ObjectID `bson:"bookId" json:"bookId"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

type Order struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Items       []LineItem         `bson:"items" json:"items"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	Status      OrderStatus        `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Review struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	BookID    primitive.ObjectID `bson:"bookId" json:"bookId"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Now is the timestamp source for createdAt/updatedAt. BSON dates keep
// milliseconds, so the value is truncated to match what a read returns.
func Now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// ParseID accepts only the 24-hex ObjectID form.
func ParseID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// Key and Touch let the HTTP layer treat every resource the same way.

func (u *User) Key() primitive.ObjectID   { return u.ID }
func (b *Book) Key() primitive.ObjectID   { return b.ID }
func (o *Order) Key() primitive.ObjectID  { return o.ID }
func (r *Review) Key() primitive.ObjectID { return r.ID }

func (u *User) Touch(t time.Time)   { u.UpdatedAt = t }
func (b *Book) Touch(t time.Time)   { b.UpdatedAt = t }
func (o *Order) Touch(t time.Time)  { o.UpdatedAt = t }
func (r *Review) Touch(t time.Time) { r.UpdatedAt = t }
