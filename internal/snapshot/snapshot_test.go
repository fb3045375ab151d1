package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/itemcore/internal/data"
	"github.com/udisondev/itemcore/internal/model"
	"github.com/udisondev/itemcore/internal/testutil"
)

const snapCatalogYAML = `
items:
  - {id: 2148, name: gold coin, type: Currency, weight: 10, stackable: true, worth: 1, moveable: true, pickupable: true}
  - {id: 1987, name: bag, type: Container, group: Container, weight: 800, capacity: 8, moveable: true, pickupable: true}
  - {id: 2376, name: sword, type: Weapon, weight: 3500, moveable: true, pickupable: true}
  - {id: 2594, name: depot chest, type: Container, group: Depot, capacity: 30}
`

func newCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	return testutil.MustParseCatalog(t, snapCatalogYAML)
}

func create(t *testing.T, c *data.Catalog, id int32, count uint16) *model.Item {
	t.Helper()
	item, err := c.CreateItem(id, count)
	require.NoError(t, err)
	return item
}

// world: depot alice{bag{gold x40}, sword} и пустой depot bob.
func world(t *testing.T, c *data.Catalog) map[string]model.Holder {
	t.Helper()
	alice := create(t, c, 2594, 0)
	bag := create(t, c, 1987, 0)
	bag.Container().AddItemBack(create(t, c, 2148, 40))
	alice.Container().AddItemBack(bag)
	alice.Container().AddItemBack(create(t, c, 2376, 0))
	bob := create(t, c, 2594, 0)
	return map[string]model.Holder{
		"depot:alice": alice.AsHolder(),
		"depot:bob":   bob.AsHolder(),
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	c := newCatalog(t)
	path := filepath.Join(t.TempDir(), "nested", "world.snap")

	hdr, err := Write(path, c.DigestHex(), Capture(world(t, c)))
	require.NoError(t, err)
	_, err = uuid.Parse(hdr.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, hdr.Holders)
	assert.Equal(t, 2, hdr.Items)

	got, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, hdr.ID, got.ID)
	assert.Equal(t, c.DigestHex(), got.CatalogDigest)
	assert.True(t, hdr.CreatedAt.Equal(got.CreatedAt))

	snap, err := Read(path, c.DigestHex())
	require.NoError(t, err)
	restored, err := Restore(c, snap)
	require.NoError(t, err)

	require.Len(t, restored, 2)
	assert.Empty(t, restored["depot:bob"])
	alice := restored["depot:alice"]
	require.Len(t, alice, 2)
	assert.Equal(t, int32(0), alice[0].Index)
	assert.Equal(t, int32(1987), alice[0].Item.ItemID())
	assert.Equal(t, int32(1), alice[1].Index)
	assert.Equal(t, int32(2376), alice[1].Item.ItemID())
	bag := alice[0].Item.Container()
	require.Equal(t, 1, bag.Size())
	assert.Equal(t, uint32(40), bag.Items()[0].Count())
}

func TestCapture_Deterministic(t *testing.T) {
	c := newCatalog(t)
	a := Capture(world(t, c))
	b := Capture(world(t, c))
	assert.Equal(t, a, b)
	assert.Equal(t, "depot:alice", a[0].Key)
}

func TestRead_CatalogMismatch(t *testing.T) {
	c := newCatalog(t)
	path := filepath.Join(t.TempDir(), "world.snap")
	_, err := Write(path, c.DigestHex(), Capture(world(t, c)))
	require.NoError(t, err)

	_, err = Read(path, "00ff")
	assert.ErrorIs(t, err, ErrCatalogMismatch)

	_, err = Read(path, "")
	assert.NoError(t, err, "empty digest skips the check")
}

func TestRead_Corrupt(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(filepath.Join(dir, "absent.snap"), "")
	assert.ErrorContains(t, err, "opening snapshot")

	garbage := filepath.Join(dir, "garbage.snap")
	require.NoError(t, os.WriteFile(garbage, []byte("not zstd at all"), 0o600))
	_, err = Read(garbage, "")
	assert.Error(t, err)
}

func TestWrite_ReplacesExisting(t *testing.T) {
	c := newCatalog(t)
	path := filepath.Join(t.TempDir(), "world.snap")

	first, err := Write(path, c.DigestHex(), nil)
	require.NoError(t, err)
	second, err := Write(path, c.DigestHex(), Capture(world(t, c)))
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	got, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are removed")
}

func TestCapture_KeepsSlotIndexes(t *testing.T) {
	c := testutil.MustParseCatalog(t, `
items:
  - {id: 2376, name: sword, type: Weapon, weight: 3500, slots: [hand], moveable: true, pickupable: true}
`)
	inv := model.NewInventory("alice", 0)
	inv.AddThing(model.PaperdollLeft, create(t, c, 2376, 0))

	holders := Capture(map[string]model.Holder{"inventory:alice": inv})
	require.Len(t, holders, 1)
	assert.Equal(t, []int32{model.PaperdollLeft}, holders[0].Indexes)

	restored, err := Restore(c, SnapshotV1{Holders: holders})
	require.NoError(t, err)
	require.Len(t, restored["inventory:alice"], 1)
	assert.Equal(t, int32(model.PaperdollLeft), restored["inventory:alice"][0].Index)
}
