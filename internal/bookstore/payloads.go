package bookstore

import "strings"

// Request payloads. Every field is a pointer: nil means the client did not
// send it. Create rule sets mark fields required, update rule sets validate
// only what is present, so an explicit "" or 0 on update is a real value.

type UserCreate struct {
	FirstName *string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"required,min=1,max=100"`
	Email     *string `json:"email" validate:"required,email,max=254"`
	Role      *Role   `json:"role" validate:"omitempty,oneof=user admin"`
}

type UserUpdate struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	Role      *Role   `json:"role" validate:"omitempty,oneof=user admin"`
}

type BookCreate struct {
	Title  *string `json:"title" validate:"required,min=1,max=200"`
	Author *string `json:"author" validate:"required,min=1,max=200"`
	Price  *Amount `json:"price" validate:"required,gte=0"`
	Stock  *Count  `json:"stock" validate:"omitempty,gte=0"`
}

type BookUpdate struct {
	Title  *string `json:"title" validate:"omitempty,min=1,max=200"`
	Author *string `json:"author" validate:"omitempty,min=1,max=200"`
	Price  *Amount `json:"price" validate:"omitempty,gte=0"`
	Stock  *Count  `json:"stock" validate:"omitempty,gte=0"`
}

type LineItemInput struct {
	BookID   *string `json:"bookId" validate:"required,objectid"`
	Quantity *Count  `json:"quantity" validate:"required,min=1"`
}

type OrderCreate struct {
	UserID      *string         `json:"userId" validate:"required,objectid"`
	Items       []LineItemInput `json:"items" validate:"required,min=1,dive"`
	TotalAmount *Amount         `json:"totalAmount" validate:"omitempty,gte=0"`
	Status      *OrderStatus    `json:"status" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
}

type OrderUpdate struct {
	UserID      *string         `json:"userId" validate:"omitempty,objectid"`
	Items       []LineItemInput `json:"items" validate:"omitempty,min=1,dive"`
	TotalAmount *Amount         `json:"totalAmount" validate:"omitempty,gte=0"`
	Status      *OrderStatus    `json:"status" validate:"omitempty,oneof=pending processing shipped delivered cancelled"`
}

type ReviewCreate struct {
	UserID  *string `json:"userId" validate:"required,objectid"`
	BookID  *string `json:"bookId" validate:"required,objectid"`
	Rating  *Count  `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

type ReviewUpdate struct {
	Rating  *Count  `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

func (in *UserCreate) Normalize() {
	trim(in.FirstName)
	trim(in.LastName)
	lowerEmail(in.Email)
}

func (in *UserUpdate) Normalize() {
	trim(in.FirstName)
	trim(in.LastName)
	lowerEmail(in.Email)
}

func (in *BookCreate) Normalize() {
	trim(in.Title)
	trim(in.Author)
}

func (in *BookUpdate) Normalize() {
	trim(in.Title)
	trim(in.Author)
}

func (in *OrderCreate) Normalize() {
	trim(in.UserID)
	for i := range in.Items {
		trim(in.Items[i].BookID)
	}
}

func (in *OrderUpdate) Normalize() {
	trim(in.UserID)
	for i := range in.Items {
		trim(in.Items[i].BookID)
	}
}

func (in *ReviewCreate) Normalize() {
	trim(in.UserID)
	trim(in.BookID)
	trim(in.Comment)
}

func (in *ReviewUpdate) Normalize() { trim(in.Comment) }

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func lowerEmail(s *string) {
	if s != nil {
		*s = strings.ToLower(strings.TrimSpace(*s))
	}
}
