package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// MemoryDatabase keeps collections in process memory.
type MemoryDatabase struct {
	mu          sync.Mutex
	collections map[string]*MemoryCollection
}

var _ Database = (*MemoryDatabase)(nil)

// NewMemoryDatabase returns an empty in-memory database.
func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{collections: make(map[string]*MemoryCollection)}
}

// Collection returns the named collection, creating it on first use.
func (d *MemoryDatabase) Collection(name string) (Collection, error) {
	if !validName(name) {
		return nil, fmt.Errorf("store: invalid collection name %q", name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.collections[name]
	if !ok {
		c = NewMemoryCollection()
		d.collections[name] = c
	}
	return c, nil
}

func (d *MemoryDatabase) Ping(context.Context) error  { return nil }
func (d *MemoryDatabase) Close(context.Context) error { return nil }

// MemoryCollection is a Collection backed by a slice, in insertion order.
type MemoryCollection struct {
	mu   sync.RWMutex
	docs []Document
}

var _ Collection = (*MemoryCollection)(nil)

// NewMemoryCollection returns an empty collection.
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{}
}

func (c *MemoryCollection) Find(_ context.Context, filter Filter) ([]Document, error) {
	if v, ok := filter[IDField]; ok {
		if _, err := filterID(v); err != nil {
			return nil, err
		}
	}
	want, err := normalize(Document(filter))
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Document, 0)
	for _, doc := range c.docs {
		if matches(doc, want) {
			out = append(out, clone(doc))
		}
	}
	return out, nil
}

func (c *MemoryCollection) FindByID(_ context.Context, id string) (Document, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return clone(c.docs[i]), nil
	}
	return nil, ErrNotFound
}

func (c *MemoryCollection) Insert(_ context.Context, doc Document) (InsertResult, error) {
	stored, err := normalize(withoutID(doc))
	if err != nil {
		return InsertResult{}, err
	}
	id := NewID()
	stored[IDField] = id

	c.mu.Lock()
	c.docs = append(c.docs, stored)
	c.mu.Unlock()

	return InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *MemoryCollection) UpdateByID(_ context.Context, id string, set Document, upsert bool) (UpdateResult, error) {
	if !ValidID(id) {
		return UpdateResult{}, ErrInvalidID
	}
	fields, err := normalize(withoutID(set))
	if err != nil {
		return UpdateResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		if !upsert {
			return UpdateResult{Acknowledged: true}, nil
		}
		fields[IDField] = id
		c.docs = append(c.docs, fields)
		return UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &id}, nil
	}

	doc := c.docs[i]
	changed := false
	for k, v := range fields {
		if old, ok := doc[k]; !ok || !reflect.DeepEqual(old, v) {
			doc[k] = v
			changed = true
		}
	}

	res := UpdateResult{Acknowledged: true, MatchedCount: 1}
	if changed {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (c *MemoryCollection) DeleteByID(_ context.Context, id string) (DeleteResult, error) {
	if !ValidID(id) {
		return DeleteResult{}, ErrInvalidID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return DeleteResult{Acknowledged: true}, nil
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

// indexOf must be called with the lock held.
func (c *MemoryCollection) indexOf(id string) int {
	for i, doc := range c.docs {
		if doc[IDField] == id {
			return i
		}
	}
	return -1
}

func matches(doc, filter Document) bool {
	for k, v := range filter {
		got, ok := doc[k]
		// nil matches a null field or one that is not there at all
		if v == nil {
			if got != nil {
				return false
			}
			continue
		}
		if !ok || !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}

// normalize round-trips through JSON so stored values have the same shapes
// a decoded request body or a database read would have.
func normalize(doc Document) (Document, error) {
	if doc == nil {
		return Document{}, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store: encode document: %w", err)
	}
	out := Document{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("store: decode document: %w", err)
	}
	return out, nil
}

func clone(doc Document) Document {
	out, err := normalize(doc)
	if err != nil {
		// doc came out of normalize already
		panic(err)
	}
	return out
}
