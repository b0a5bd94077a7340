package httpx

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-bookstore-api/internal/apperr"
	"github.com/ariefcatur/go-bookstore-api/internal/bookstore"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"net/http"
	"reflect"
	"time"
)

const storeTimeout = 5 * time.Second

// Store is the persistence a resource handler needs.
// *bookstore.Collection satisfies it.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id primitive.ObjectID) (T, error)
	Insert(ctx context.Context, doc T) error
	Replace(ctx context.Context, id primitive.ObjectID, doc T) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type document[T any] interface {
	*T
	Key() primitive.ObjectID
	Touch(time.Time)
}

// resource serves GET/POST /{path} and GET/PUT/DELETE /{path}/{id} for
// one document type. C and U are the create and update payloads.
type resource[T any, PT document[T], C any, U any] struct {
	// name is the event resource name, e.g. "book".
	name  string
	path  string
	store Store[T]
	// conflict is the 409 message for a duplicate key.
	conflict string
	newDoc   func(ctx context.Context, in *C) (T, error)
	applyDoc func(ctx context.Context, doc *T, in *U, now time.Time) error
	dec      decoder
	ew       errorWriter
	events   *emitter
}

func (h *resource[T, PT, C, U]) Register(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Get(h.path, h.list)
	r.Get(h.path+"/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(gate)
		r.Post(h.path, h.create)
		r.Put(h.path+"/{id}", h.update)
		r.Delete(h.path+"/{id}", h.delete)
	})
}

func (h *resource[T, PT, C, U]) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	docs, err := h.store.List(ctx)
	if err != nil {
		h.ew.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *resource[T, PT, C, U]) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.ew.write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	doc, err := h.store.Get(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *resource[T, PT, C, U]) create(w http.ResponseWriter, r *http.Request) {
	var in C
	if err := h.dec.decode(w, r, &in); err != nil {
		h.ew.write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	doc, err := h.newDoc(ctx, &in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store.Insert(ctx, doc); err != nil {
		h.fail(w, r, err)
		return
	}
	h.events.emit(r, h.name, bookstore.ActionCreated, PT(&doc).Key(), doc)
	writeJSON(w, http.StatusCreated, doc)
}

// update merges the present payload fields into the stored document.
func (h *resource[T, PT, C, U]) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.ew.write(w, r, err)
		return
	}
	var in U
	if err := h.dec.decode(w, r, &in); err != nil {
		h.ew.write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	doc, err := h.store.Get(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	now := bookstore.Now()
	before := doc
	if err := h.applyDoc(ctx, &doc, &in, now); err != nil {
		h.fail(w, r, err)
		return
	}
	// samakan updatedAt supaya yang dibandingkan hanya field data
	PT(&before).Touch(now)
	if reflect.DeepEqual(before, doc) {
		h.fail(w, r, bookstore.ErrNoChanges)
		return
	}
	if err := h.store.Replace(ctx, id, doc); err != nil {
		h.fail(w, r, err)
		return
	}
	h.events.emit(r, h.name, bookstore.ActionUpdated, id, doc)
	writeJSON(w, http.StatusOK, doc)
}

func (h *resource[T, PT, C, U]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.ew.write(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.store.Delete(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.events.emit(r, h.name, bookstore.ActionDeleted, id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// fail names the resource in not-found and duplicate responses.
func (h *resource[T, PT, C, U]) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, bookstore.ErrNotFound):
		err = apperr.NotFound(h.name + " not found")
	case errors.Is(err, bookstore.ErrDuplicate):
		err = apperr.Conflict(h.conflict)
	}
	h.ew.write(w, r, err)
}
