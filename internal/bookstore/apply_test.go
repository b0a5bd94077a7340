package bookstore

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"testing"
	"time"
)

func ptr[T any](v T) *T { return &v }

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestNewBookDefaultsStockToZero(t *testing.T) {
	b := NewBook(BookCreate{Title: ptr("Dune"), Author: ptr("Herbert"), Price: ptr(Amount(15.5))}, t0)

	assert.False(t, b.ID.IsZero())
	assert.Equal(t, 0, b.Stock)
	assert.Equal(t, 15.5, b.Price)
	assert.Equal(t, t0, b.CreatedAt)
	assert.Equal(t, t0, b.UpdatedAt)
}

func TestBookApplyKeepsOmittedFields(t *testing.T) {
	b := NewBook(BookCreate{Title: ptr("Dune"), Author: ptr("Herbert"), Price: ptr(Amount(15.5)), Stock: ptr(Count(4))}, t0)
	later := t0.Add(time.Hour)

	b.Apply(BookUpdate{Title: ptr("Dune Messiah")}, later)

	assert.Equal(t, "Dune Messiah", b.Title)
	assert.Equal(t, "Herbert", b.Author)
	assert.Equal(t, 15.5, b.Price)
	assert.Equal(t, 4, b.Stock)
	assert.Equal(t, t0, b.CreatedAt)
	assert.Equal(t, later, b.UpdatedAt)
}

func TestBookApplyExplicitZeroIsAValue(t *testing.T) {
	b := NewBook(BookCreate{Title: ptr("Dune"), Author: ptr("Herbert"), Price: ptr(Amount(15.5)), Stock: ptr(Count(4))}, t0)

	b.Apply(BookUpdate{Stock: ptr(Count(0)), Price: ptr(Amount(0))}, t0)

	assert.Equal(t, 0, b.Stock)
	assert.Equal(t, 0.0, b.Price)
}

func TestNewUserDefaultsRole(t *testing.T) {
	u := NewUser(UserCreate{FirstName: ptr("Ada"), LastName: ptr("Lovelace"), Email: ptr("ada@example.com")}, t0)
	assert.Equal(t, RoleUser, u.Role)

	admin := NewUser(UserCreate{FirstName: ptr("Ada"), LastName: ptr("Lovelace"), Email: ptr("ada@example.com"), Role: ptr(RoleAdmin)}, t0)
	assert.Equal(t, RoleAdmin, admin.Role)
}

func TestUserNormalizeLowercasesEmail(t *testing.T) {
	in := UserCreate{FirstName: ptr("  Ada "), Email: ptr("  Ada@Example.COM ")}
	in.Normalize()
	assert.Equal(t, "Ada", *in.FirstName)
	assert.Equal(t, "ada@example.com", *in.Email)
}

func TestNewOrderDefaultsAndPricing(t *testing.T) {
	user := primitive.NewObjectID()
	b1, b2 := primitive.NewObjectID(), primitive.NewObjectID()
	in := OrderCreate{
		UserID: ptr(user.Hex()),
		Items: []LineItemInput{
			{BookID: ptr(b1.Hex()), Quantity: ptr(Count(2))},
			{BookID: ptr(b2.Hex()), Quantity: ptr(Count(1))},
			{BookID: ptr(b1.Hex()), Quantity: ptr(Count(1))},
		},
	}
	require.True(t, in.NeedsPricing())

	o := NewOrder(in, t0)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, user, o.UserID)
	assert.Equal(t, []primitive.ObjectID{b1, b2}, o.BookIDs())

	require.NoError(t, o.Price(map[primitive.ObjectID]float64{b1: 10.1, b2: 0.2}))
	assert.Equal(t, 30.5, o.TotalAmount)
}

func TestOrderPriceUnknownBook(t *testing.T) {
	missing := primitive.NewObjectID()
	o := Order{Items: []LineItem{{BookID: missing, Quantity: 1}}}

	err := o.Price(map[primitive.ObjectID]float64{})
	var unknown *UnknownBookError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, missing, unknown.BookID)
}

func TestOrderSuppliedTotalIsTrusted(t *testing.T) {
	in := OrderCreate{
		UserID:      ptr(primitive.NewObjectID().Hex()),
		Items:       []LineItemInput{{BookID: ptr(primitive.NewObjectID().Hex()), Quantity: ptr(Count(1))}},
		TotalAmount: ptr(Amount(99)),
		Status:      ptr(StatusShipped),
	}
	assert.False(t, in.NeedsPricing())

	o := NewOrder(in, t0)
	assert.Equal(t, 99.0, o.TotalAmount)
	assert.Equal(t, StatusShipped, o.Status)
}

func TestOrderUpdatePricingOnlyWhenItemsChange(t *testing.T) {
	assert.False(t, (&OrderUpdate{Status: ptr(StatusShipped)}).NeedsPricing())
	assert.True(t, (&OrderUpdate{Items: []LineItemInput{}}).NeedsPricing())
	assert.False(t, (&OrderUpdate{Items: []LineItemInput{}, TotalAmount: ptr(Amount(1))}).NeedsPricing())
}

func TestReviewApply(t *testing.T) {
	r := NewReview(ReviewCreate{
		UserID: ptr(primitive.NewObjectID().Hex()),
		BookID: ptr(primitive.NewObjectID().Hex()),
		Rating: ptr(Count(4)),
	}, t0)
	assert.Equal(t, "", r.Comment)

	r.Apply(ReviewUpdate{Comment: ptr("great")}, t0)
	assert.Equal(t, 4, r.Rating)
	assert.Equal(t, "great", r.Comment)
}

func TestNumericInputsAcceptStrings(t *testing.T) {
	var in BookCreate
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Dune","author":"Herbert","price":"15.5","stock":" 3 "}`), &in))
	assert.Equal(t, Amount(15.5), *in.Price)
	assert.Equal(t, Count(3), *in.Stock)

	require.NoError(t, json.Unmarshal([]byte(`{"price":12,"stock":null}`), &in))
	assert.Equal(t, Amount(12), *in.Price)
	assert.Nil(t, in.Stock)

	assert.Error(t, json.Unmarshal([]byte(`{"price":"cheap"}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`{"stock":2.5}`), &in))
}

func TestCountAcceptsIntegralFloats(t *testing.T) {
	var in BookUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"stock":3.0}`), &in))
	assert.Equal(t, Count(3), *in.Stock)
	require.NoError(t, json.Unmarshal([]byte(`{"stock":"4.0"}`), &in))
	assert.Equal(t, Count(4), *in.Stock)

	err := json.Unmarshal([]byte(`{"stock":4.5}`), &in)
	var te *json.UnmarshalTypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "stock", te.Field)

	err = json.Unmarshal([]byte(`{"items":[{"bookId":"x","quantity":"many"}]}`), &OrderCreate{})
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "items.quantity", te.Field)
}

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()
	got, ok := ParseID(id.Hex())
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = ParseID("not-an-id")
	assert.False(t, ok)
}
