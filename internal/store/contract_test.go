package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCollections runs the same behavior checks against every local driver.
func testCollections(t *testing.T, run func(t *testing.T, c Collection)) {
	t.Run("memory", func(t *testing.T) {
		c, err := NewMemoryDatabase().Collection("cartCollection")
		require.NoError(t, err)
		run(t, c)
	})

	t.Run("sqlite", func(t *testing.T) {
		db, err := NewSQLiteDatabase(SQLiteConfig{Path: filepath.Join(t.TempDir(), "store.db")})
		require.NoError(t, err)
		t.Cleanup(func() { db.Close(context.Background()) })

		c, err := db.Collection("cartCollection")
		require.NoError(t, err)
		run(t, c)
	})
}

func TestCollection_InsertAndFind(t *testing.T) {
	testCollections(t, func(t *testing.T, c Collection) {
		ctx := context.Background()

		res, err := c.Insert(ctx, Document{"email": "a@x.com", "name": "Phone", "price": 499.5})
		require.NoError(t, err)
		assert.True(t, res.Acknowledged)
		assert.True(t, ValidID(res.InsertedID))

		_, err = c.Insert(ctx, Document{"email": "b@x.com", "name": "Laptop"})
		require.NoError(t, err)
		_, err = c.Insert(ctx, Document{"email": "a@x.com", "name": "Charger"})
		require.NoError(t, err)

		all, err := c.Find(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		mine, err := c.Find(ctx, Filter{"email": "a@x.com"})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, "Phone", mine[0]["name"])
		assert.Equal(t, "Charger", mine[1]["name"])
		assert.Equal(t, res.InsertedID, mine[0][IDField])
		assert.Equal(t, 499.5, mine[0]["price"])

		none, err := c.Find(ctx, Filter{"email": "nobody@x.com"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestCollection_FindFilterTypes(t *testing.T) {
	testCollections(t, func(t *testing.T, c Collection) {
		ctx := context.Background()

		_, err := c.Insert(ctx, Document{"brand": "Apple", "rating": 5, "inStock": true, "tags": []any{"new"}})
		require.NoError(t, err)
		_, err = c.Insert(ctx, Document{"brand": "Apple", "rating": 3, "inStock": false})
		require.NoError(t, err)

		got, err := c.Find(ctx, Filter{"brand": "Apple", "rating": float64(5)})
		require.NoError(t, err)
		assert.Len(t, got, 1)

		got, err = c.Find(ctx, Filter{"inStock": false})
		require.NoError(t, err)
		assert.Len(t, got, 1)

		got, err = c.Find(ctx, Filter{"tags": []any{"new"}})
		require.NoError(t, err)
		assert.Len(t, got, 1)

		got, err = c.Find(ctx, Filter{"brand": "apple"})
		require.NoError(t, err)
		assert.Empty(t, got)

		// only the second document lacks tags
		got, err = c.Find(ctx, Filter{"tags": nil})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, float64(3), got[0]["rating"])
	})
}

func TestCollection_FindByIDFilter(t *testing.T) {
	testCollections(t, func(t *testing.T, c Collection) {
		ctx := context.Background()

		res, err := c.Insert(ctx, Document{"brand": "Apple"})
		require.NoError(t, err)
		_, err = c.Insert(ctx, Document{"brand": "Apple"})
		require.NoError(t, err)

		got, err := c.Find(ctx, Filter{IDField: res.InsertedID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, res.InsertedID, got[0][IDField])

		got, err = c.Find(ctx, Filter{IDField: res.InsertedID, "brand": "Samsung"})
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = c.Find(ctx, Filter{IDField: NewID()})
		require.NoError(t, err)
		assert.Empty(t, got)

		_, err = c.Find(ctx, Filter{IDField: "not-an-id"})
		assert.ErrorIs(t, err, ErrInvalidID)

		_, err = c.Find(ctx, Filter{IDField: 42})
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestCollection_InsertIgnoresCallerID(t *testing.T) {
	testCollections(t, func(t *testing.T, c Collection) {
		ctx := context.Background()
		callerID := NewID()

		res, err := c.Insert(ctx, Document{IDField: callerID, "name": "x"})
		require.NoError(t, err)
		assert.NotEqual(t, callerID, res.InsertedID)

		_, err = c.FindByID(ctx, callerID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCollection_FindByID(t *testing.T) {
	testCollections(t, func(t *testing.T, c Collection) {
		ctx := context.Background()

		res, err := c.Insert(ctx, Document{"name": "Phone"})
		require.NoError(t, err)

		doc, err := c.FindByID(ctx, res.InsertedID)
		require.NoError(t, err)
		assert.Equal(t, "Phone", doc["name"])
		assert.Equal(t, res.InsertedID, doc[IDField])

		_, err = c.FindByID(ctx, NewID())
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = c.FindByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestCollection_UpdateByID(t *testing.T) {
	testCollections(t, func(t *testing.T, c Collection) {
		ctx := context.Background()

		res, err := c.Insert(ctx, Document{"name": "Phone", "price": 100})
		require.NoError(t, err)

		upd, err := c.UpdateByID(ctx, res.InsertedID, Document{"price": 120, "brand": "Apple"}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), upd.MatchedCount)
		assert.Equal(t, int64(1), upd.ModifiedCount)
		assert.Zero(t, upd.UpsertedCount)
		assert.Nil(t, upd.UpsertedID)

		doc, err := c.FindByID(ctx, res.InsertedID)
		require.NoError(t, err)
		assert.Equal(t, "Phone", doc["name"])
		assert.Equal(t, float64(120), doc["price"])
		assert.Equal(t, "Apple", doc["brand"])

		same, err := c.UpdateByID(ctx, res.InsertedID, Document{"price": 120}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), same.MatchedCount)
		assert.Zero(t, same.ModifiedCount)
	})
}

func TestCollection_UpdateUpsert(t *testing.T) {
	testCollections(t, func(t *testing.T, c Collection) {
		ctx := context.Background()
		id := NewID()

		miss, err := c.UpdateByID(ctx, id, Document{"name": "Ghost"}, false)
		require.NoError(t, err)
		assert.Zero(t, miss.MatchedCount)
		assert.Zero(t, miss.UpsertedCount)

		_, err = c.FindByID(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)

		ups, err := c.UpdateByID(ctx, id, Document{"name": "Tablet"}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), ups.UpsertedCount)
		require.NotNil(t, ups.UpsertedID)
		assert.Equal(t, id, *ups.UpsertedID)

		doc, err := c.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Tablet", doc["name"])

		_, err = c.UpdateByID(ctx, "bad", Document{"name": "x"}, true)
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestCollection_DeleteByID(t *testing.T) {
	testCollections(t, func(t *testing.T, c Collection) {
		ctx := context.Background()

		res, err := c.Insert(ctx, Document{"name": "Phone"})
		require.NoError(t, err)

		del, err := c.DeleteByID(ctx, res.InsertedID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), del.DeletedCount)

		again, err := c.DeleteByID(ctx, res.InsertedID)
		require.NoError(t, err)
		assert.Zero(t, again.DeletedCount)

		_, err = c.DeleteByID(ctx, "zzz")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestDatabase_RejectsBadCollectionName(t *testing.T) {
	_, err := NewMemoryDatabase().Collection("drop table;")
	assert.Error(t, err)

	db, err := NewSQLiteDatabase(SQLiteConfig{Path: filepath.Join(t.TempDir(), "store.db")})
	require.NoError(t, err)
	defer db.Close(context.Background())

	_, err = db.Collection(`x"; DROP TABLE y; --`)
	assert.Error(t, err)
}

func TestSQLite_RejectsBadFieldName(t *testing.T) {
	db, err := NewSQLiteDatabase(SQLiteConfig{Path: filepath.Join(t.TempDir(), "store.db")})
	require.NoError(t, err)
	defer db.Close(context.Background())

	c, err := db.Collection("Products")
	require.NoError(t, err)

	_, err = c.Find(context.Background(), Filter{"brand') OR 1=1 --": "x"})
	assert.Error(t, err)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.db")
	ctx := context.Background()

	db, err := NewSQLiteDatabase(SQLiteConfig{Path: path})
	require.NoError(t, err)
	c, err := db.Collection("Products")
	require.NoError(t, err)
	res, err := c.Insert(ctx, Document{"name": "Phone"})
	require.NoError(t, err)
	require.NoError(t, db.Close(ctx))

	db, err = NewSQLiteDatabase(SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer db.Close(ctx)
	c, err = db.Collection("Products")
	require.NoError(t, err)

	doc, err := c.FindByID(ctx, res.InsertedID)
	require.NoError(t, err)
	assert.Equal(t, "Phone", doc["name"])
}
