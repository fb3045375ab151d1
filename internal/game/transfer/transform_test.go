package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/itemcore/internal/model"
)

func TestTransformItem_InPlace(t *testing.T) {
	e := newTestEngine(t, Options{})
	tile := newGroundTile(t, e)
	bag := put(t, e, tile, idBag, 0)
	candle := put(t, e, bag.AsHolder(), idCandle, 0)
	require.True(t, e.Scheduler().IsTracked(candle))
	require.Equal(t, int32(820), bag.Weight())

	got := e.TransformItem(candle, idStub, -1)

	require.Same(t, candle, got)
	assert.Equal(t, idStub, candle.ItemID())
	assert.Same(t, bag.AsHolder(), candle.Holder())
	assert.Zero(t, candle.Duration())
	assert.False(t, e.Scheduler().IsTracked(candle))
	assert.Equal(t, int32(805), bag.Weight())
}

func TestTransformItem_Count(t *testing.T) {
	e := newTestEngine(t, Options{})
	tile := newGroundTile(t, e)
	bag := put(t, e, tile, idBag, 0)
	gold := put(t, e, bag.AsHolder(), idGold, 50)

	assert.Same(t, gold, e.TransformItem(gold, idGold, 30))
	assert.Equal(t, uint32(30), gold.Count())

	assert.Nil(t, e.TransformItem(gold, idGold, 0))
	assert.Nil(t, gold.Holder())
	assert.Zero(t, bag.Container().Size())
}

func TestTransformItem_ReplacesContainer(t *testing.T) {
	e := newTestEngine(t, Options{})
	obs := &recordingObserver{}
	e.Subscribe(obs)
	tile := newGroundTile(t, e)
	bag := put(t, e, tile, idBag, 0)
	sword := put(t, e, bag.AsHolder(), idSword, 0)
	index := tile.ThingIndex(bag)
	obs.events = nil

	backpack := e.TransformItem(bag, idBackpack, -1)

	require.NotNil(t, backpack)
	require.NotSame(t, bag, backpack)
	assert.Equal(t, idBackpack, backpack.ItemID())
	assert.Equal(t, index, tile.ThingIndex(backpack))
	assert.Same(t, backpack.AsHolder(), sword.Holder())
	assert.Nil(t, bag.Holder())
	assert.Zero(t, bag.Container().Size())

	require.Len(t, obs.events, 2)
	assert.False(t, obs.events[0].added)
	assert.Same(t, bag, obs.events[0].item)
	assert.True(t, obs.events[1].added)
	assert.Same(t, backpack, obs.events[1].item)

	e.Cleanup()
	assert.True(t, bag.IsDestroyed())
	assert.False(t, sword.IsDestroyed())
}

func TestTransformItem_UnknownTypeKeepsItem(t *testing.T) {
	e := newTestEngine(t, Options{})
	tile := newGroundTile(t, e)
	sword := put(t, e, tile, idSword, 0)

	assert.Same(t, sword, e.TransformItem(sword, 99999, -1))
	assert.Equal(t, idSword, sword.ItemID())
	assert.Same(t, model.Holder(tile), sword.Holder())
}

func TestTransformItem_UnplacedItem(t *testing.T) {
	e := newTestEngine(t, Options{})
	sword := create(t, e, idSword, 0)

	assert.Nil(t, e.TransformItem(sword, idShield, -1))
	assert.Equal(t, idSword, sword.ItemID())
}

func TestDecay_TransformsCandle(t *testing.T) {
	e := newTestEngine(t, Options{})
	tile := newGroundTile(t, e)
	candle := put(t, e, tile, idCandle, 0)
	sched := e.Scheduler()

	for range 3 {
		sched.Tick()
		e.Cleanup()
	}
	assert.Equal(t, idCandle, candle.ItemID())
	assert.Equal(t, 500*time.Millisecond, candle.Duration())

	sched.Tick()
	e.Cleanup()

	assert.Equal(t, idStub, candle.ItemID())
	assert.Same(t, model.Holder(tile), candle.Holder())
	assert.False(t, sched.IsTracked(candle))
	assert.Equal(t, int32(1), candle.Refs())
	assert.False(t, candle.IsDestroyed())
}

func TestDecay_RemovesItemWithoutTarget(t *testing.T) {
	e := newTestEngine(t, Options{})
	tile := newGroundTile(t, e)
	ash := put(t, e, tile, idAsh, 0)
	sched := e.Scheduler()

	sched.Tick()
	e.Cleanup()
	require.Same(t, model.Holder(tile), ash.Holder())

	sched.Tick()
	e.Cleanup()

	assert.Nil(t, ash.Holder())
	assert.True(t, ash.IsDestroyed())
	assert.Nil(t, e.FindItemOfType(tile, idAsh, false, -1))
}

func TestDecay_CorpseDropsContents(t *testing.T) {
	e := newTestEngine(t, Options{})
	tile := newGroundTile(t, e)
	rat := put(t, e, tile, idDeadRat, 0)
	gold := put(t, e, rat.AsHolder(), idGold, 7)
	sched := e.Scheduler()

	sched.Tick()
	sched.Tick()
	e.Cleanup()

	remains := e.FindItemOfType(tile, idRemains, false, -1)
	require.NotNil(t, remains)
	assert.Nil(t, e.FindItemOfType(tile, idDeadRat, false, -1))
	assert.True(t, rat.IsDestroyed())
	assert.True(t, gold.IsDestroyed())
	assert.Zero(t, sched.Len())
}

func TestDecay_FollowsMovedItem(t *testing.T) {
	e := newTestEngine(t, Options{})
	tile := newGroundTile(t, e)
	bag := put(t, e, tile, idBag, 0)
	candle := put(t, e, bag.AsHolder(), idCandle, 0)
	sched := e.Scheduler()

	sched.Tick()
	moved, ret := e.MoveItem(bag.AsHolder(), tile, model.IndexWherever, candle, 1, nil, 0)
	require.Equal(t, model.RetOK, ret)
	require.Equal(t, uint32(1), moved)
	assert.True(t, sched.IsTracked(candle))

	for range 3 {
		sched.Tick()
	}
	e.Cleanup()

	assert.Equal(t, idStub, candle.ItemID())
	assert.Same(t, model.Holder(tile), candle.Holder())
}
