package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/itemcore/internal/data"
	"github.com/udisondev/itemcore/internal/model"
	"github.com/udisondev/itemcore/internal/testutil"
)

const dbCatalogYAML = `
items:
  - {id: 2148, name: gold coin, type: Currency, weight: 10, stackable: true, worth: 1, moveable: true, pickupable: true}
  - {id: 1987, name: bag, type: Container, group: Container, weight: 800, capacity: 8, moveable: true, pickupable: true}
  - {id: 2597, name: letter, weight: 50, moveable: true, pickupable: true, mailable: true}
`

func newCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	return testutil.MustParseCatalog(t, dbCatalogYAML)
}

func create(t *testing.T, c *data.Catalog, id int32, count uint16) *model.Item {
	t.Helper()
	item, err := c.CreateItem(id, count)
	require.NoError(t, err)
	return item
}

func TestItemRepository_SaveLoad(t *testing.T) {
	pool := setupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	c := newCatalog(t)
	repo := NewItemRepository(pool, c.DigestHex())

	bag := create(t, c, 1987, 0)
	letter := create(t, c, 2597, 0)
	letter.SetText("see you at the depot")
	bag.Container().AddItemBack(letter)
	gold := create(t, c, 2148, 75)

	require.NoError(t, repo.SaveHolder(ctx, "depot:alice", []*model.Item{bag, gold}))

	items, err := repo.LoadHolder(ctx, c, "depot:alice")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int32(1987), items[0].ItemID())
	require.Equal(t, 1, items[0].Container().Size())
	assert.Equal(t, "see you at the depot", items[0].Container().Items()[0].Text())
	assert.Equal(t, uint32(75), items[1].Count())

	total, err := repo.CountByType(ctx, 2148)
	require.NoError(t, err)
	assert.Equal(t, int64(75), total)
}

func TestItemRepository_SaveReplaces(t *testing.T) {
	pool := setupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	c := newCatalog(t)
	repo := NewItemRepository(pool, c.DigestHex())

	require.NoError(t, repo.SaveHolder(ctx, "tile:1", []*model.Item{create(t, c, 2148, 10), create(t, c, 2148, 20)}))
	require.NoError(t, repo.SaveHolder(ctx, "tile:1", []*model.Item{create(t, c, 2597, 0)}))

	items, err := repo.LoadHolder(ctx, c, "tile:1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int32(2597), items[0].ItemID())

	require.NoError(t, repo.SaveHolder(ctx, "tile:1", nil))
	items, err = repo.LoadHolder(ctx, c, "tile:1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemRepository_MissingHolder(t *testing.T) {
	pool := setupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	c := newCatalog(t)
	repo := NewItemRepository(pool, c.DigestHex())

	items, err := repo.LoadHolder(ctx, c, "nobody")
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestItemRepository_CatalogMismatch(t *testing.T) {
	pool := setupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	c := newCatalog(t)

	require.NoError(t, NewItemRepository(pool, "old-digest").SaveHolder(ctx, "depot:bob", []*model.Item{create(t, c, 2148, 1)}))

	_, err := NewItemRepository(pool, c.DigestHex()).LoadHolder(ctx, c, "depot:bob")
	assert.ErrorIs(t, err, ErrCatalogMismatch)
}

func TestItemRepository_SaveHoldersAndKeys(t *testing.T) {
	pool := setupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	c := newCatalog(t)
	repo := NewItemRepository(pool, c.DigestHex())

	require.NoError(t, repo.SaveHolders(ctx, map[string][]*model.Item{
		"depot:bob":   {create(t, c, 2148, 3)},
		"depot:alice": {create(t, c, 2148, 4)},
	}))

	keys, err := repo.HolderKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"depot:alice", "depot:bob"}, keys)

	require.NoError(t, repo.DeleteHolder(ctx, "depot:bob"))
	keys, err = repo.HolderKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"depot:alice"}, keys)

	total, err := repo.CountByType(ctx, 2148)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestMigratePool_Idempotent(t *testing.T) {
	pool := setupTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)
	assert.NoError(t, MigratePool(ctx, pool))
}
