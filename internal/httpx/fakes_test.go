package httpx

import (
	"context"
	"github.com/ariefcatur/go-bookstore-api/internal/auth"
	"github.com/ariefcatur/go-bookstore-api/internal/bookstore"
	kafkago "github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"net/http"
	"sync"
)

// memStore is an in-memory Store. unique reports whether two documents
// collide on a unique index.
type memStore[T any, PT document[T]] struct {
	mu     sync.Mutex
	ids    []primitive.ObjectID
	docs   map[primitive.ObjectID]T
	unique func(a, b *T) bool
	err    error
}

func newMemStore[T any, PT document[T]](unique func(a, b *T) bool) *memStore[T, PT] {
	return &memStore[T, PT]{docs: map[primitive.ObjectID]T{}, unique: unique}
}

func (m *memStore[T, PT]) List(context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]T, 0, len(m.ids))
	for _, id := range m.ids {
		out = append(out, m.docs[id])
	}
	return out, nil
}

func (m *memStore[T, PT]) Get(_ context.Context, id primitive.ObjectID) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if m.err != nil {
		return zero, m.err
	}
	doc, ok := m.docs[id]
	if !ok {
		return doc, bookstore.ErrNotFound
	}
	return doc, nil
}

func (m *memStore[T, PT]) Insert(_ context.Context, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.collides(&doc) {
		return bookstore.ErrDuplicate
	}
	id := PT(&doc).Key()
	m.ids = append(m.ids, id)
	m.docs[id] = doc
	return nil
}

func (m *memStore[T, PT]) Replace(_ context.Context, id primitive.ObjectID, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return bookstore.ErrNotFound
	}
	if m.collides(&doc) {
		return bookstore.ErrDuplicate
	}
	m.docs[id] = doc
	return nil
}

func (m *memStore[T, PT]) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return bookstore.ErrNotFound
	}
	delete(m.docs, id)
	for i, v := range m.ids {
		if v == id {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore[T, PT]) collides(doc *T) bool {
	if m.unique == nil {
		return false
	}
	for id, other := range m.docs {
		if id != PT(doc).Key() && m.unique(doc, &other) {
			return true
		}
	}
	return false
}

func (m *memStore[T, PT]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

type memUsers struct {
	*memStore[bookstore.User, *bookstore.User]
}

func (u memUsers) EmailTaken(_ context.Context, email string, except primitive.ObjectID) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for id, doc := range u.docs {
		if id != except && doc.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type memBooks struct {
	*memStore[bookstore.Book, *bookstore.Book]
}

func (b memBooks) Prices(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := map[primitive.ObjectID]float64{}
	for _, id := range ids {
		if doc, ok := b.docs[id]; ok {
			out[id] = doc.Price
		}
	}
	return out, nil
}

// headerSessions authenticates any request carrying X-Test-User.
type headerSessions struct{}

func (headerSessions) Identity(r *http.Request) (auth.Identity, bool, error) {
	id := r.Header.Get("X-Test-User")
	if id == "" {
		return auth.Identity{}, false, nil
	}
	return auth.Identity{ID: id, Name: "tester", Provider: "github"}, true, nil
}

type published struct {
	key     []byte
	value   []byte
	headers []kafkago.Header
}

type memPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *memPublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{key: key, value: value, headers: headers})
}

func (p *memPublisher) all() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.msgs...)
}
