package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainer_AddThingPushesFront(t *testing.T) {
	var s testSerials
	bag := newTestItem(t, &s, tmplBag, 0).Container()
	first := newTestItem(t, &s, tmplSword, 0)
	second := newTestItem(t, &s, tmplShield, 0)

	bag.AddThing(IndexWherever, first)
	bag.AddThing(IndexWherever, second)

	assert.Same(t, second, bag.ThingAt(0))
	assert.Same(t, first, bag.ThingAt(1))
	assert.Equal(t, int32(1), bag.ThingIndex(first))
	assert.Equal(t, int32(2), bag.LastIndex())
	assert.Nil(t, bag.ThingAt(2))
	assert.Same(t, Holder(bag), first.Holder())
}

func TestContainer_QueryAdd(t *testing.T) {
	var s testSerials
	bag := newTestItem(t, &s, tmplBag, 0)
	pouch := newTestItem(t, &s, tmplPouch, 0)
	bag.Container().AddThing(IndexWherever, pouch)

	t.Run("into itself", func(t *testing.T) {
		assert.Equal(t, RetThisIsImpossible, bag.Container().QueryAdd(IndexWherever, bag, 1, 0, nil))
	})
	t.Run("into own descendant", func(t *testing.T) {
		assert.Equal(t, RetThisIsImpossible, pouch.Container().QueryAdd(IndexWherever, bag, 1, 0, nil))
	})
	t.Run("not pickupable", func(t *testing.T) {
		statue := newTestItem(t, &s, tmplStatue, 0)
		assert.Equal(t, RetCannotPickup, bag.Container().QueryAdd(IndexWherever, statue, 1, 0, nil))
	})
	t.Run("full", func(t *testing.T) {
		pouch.Container().AddThing(IndexWherever, newTestItem(t, &s, tmplSword, 0))
		sword := newTestItem(t, &s, tmplSword, 0)
		assert.Equal(t, RetContainerNotEnoughRoom, pouch.Container().QueryAdd(IndexWherever, sword, 1, 0, nil))
		assert.Equal(t, RetOK, pouch.Container().QueryAdd(IndexWherever, sword, 1, FlagNoLimit, nil))
		assert.Equal(t, RetOK, pouch.Container().QueryAdd(0, sword, 1, 0, nil), "explicit index skips slot check")
	})
}

func TestContainer_QueryAddChecksOwnerCapacity(t *testing.T) {
	var s testSerials
	inv := NewInventory("Bob", 5000)
	bag := newTestItem(t, &s, tmplBag, 0)
	inv.AddThing(PaperdollBackpack, bag)

	heavy := newTestItem(t, &s, tmplShield, 0)
	assert.Equal(t, RetNotEnoughCapacity, bag.Container().QueryAdd(IndexWherever, heavy, 1, 0, nil))

	light := newTestItem(t, &s, tmplGold, 10)
	assert.Equal(t, RetOK, bag.Container().QueryAdd(IndexWherever, light, 10, 0, nil))
}

func TestContainer_QueryMaxCount(t *testing.T) {
	var s testSerials
	bag := newTestItem(t, &s, tmplBag, 0).Container()
	bag.AddThing(IndexWherever, newTestItem(t, &s, tmplGold, 70))
	bag.AddThing(IndexWherever, newTestItem(t, &s, tmplGold, 100))
	bag.AddThing(IndexWherever, newTestItem(t, &s, tmplSword, 0))

	gold := newTestItem(t, &s, tmplGold, 50)

	ret, n := bag.QueryMaxCount(IndexWherever, gold, 50, 0)
	assert.Equal(t, RetOK, ret)
	assert.Equal(t, uint32(5*100+30), n, "free slots plus room in partial stacks")

	ret, n = bag.QueryMaxCount(2, gold, 50, 0)
	assert.Equal(t, RetOK, ret)
	assert.Equal(t, uint32(5*100+30), n, "index 2 is the 70-stack")

	sword := newTestItem(t, &s, tmplSword, 0)
	ret, n = bag.QueryMaxCount(IndexWherever, sword, 1, 0)
	assert.Equal(t, RetOK, ret)
	assert.Equal(t, uint32(5), n)
}

func TestContainer_QueryMaxCountFull(t *testing.T) {
	var s testSerials
	pouch := newTestItem(t, &s, tmplPouch, 0).Container()
	pouch.AddThing(IndexWherever, newTestItem(t, &s, tmplGold, 50))

	gold := newTestItem(t, &s, tmplGold, 60)
	ret, n := pouch.QueryMaxCount(IndexWherever, gold, 60, 0)
	assert.Equal(t, RetContainerNotEnoughRoom, ret)
	assert.Equal(t, uint32(50), n)

	sword := newTestItem(t, &s, tmplSword, 0)
	ret, n = pouch.QueryMaxCount(IndexWherever, sword, 1, 0)
	assert.Equal(t, RetContainerNotEnoughRoom, ret)
	assert.Zero(t, n)
}

func TestContainer_QueryRemove(t *testing.T) {
	var s testSerials
	bag := newTestItem(t, &s, tmplBag, 0).Container()
	gold := newTestItem(t, &s, tmplGold, 30)
	bag.AddThing(IndexWherever, gold)

	assert.Equal(t, RetOK, bag.QueryRemove(gold, 30, 0, nil))
	assert.Equal(t, RetNotPossible, bag.QueryRemove(gold, 31, 0, nil))
	assert.Equal(t, RetNotPossible, bag.QueryRemove(gold, 0, 0, nil))
	assert.Equal(t, RetNotPossible, bag.QueryRemove(newTestItem(t, &s, tmplGold, 1), 1, 0, nil))
}

func TestContainer_QueryDestination(t *testing.T) {
	var s testSerials
	backpack := newTestItem(t, &s, tmplBag, 0)
	bag := newTestItem(t, &s, tmplBag, 0)
	backpack.Container().AddThing(IndexWherever, bag)
	stack := newTestItem(t, &s, tmplGold, 40)
	backpack.Container().AddThing(IndexWherever, stack)
	// backpack: [stack, bag]

	gold := newTestItem(t, &s, tmplGold, 10)

	t.Run("parent index", func(t *testing.T) {
		dest, idx, _ := bag.Container().QueryDestination(IndexParent, gold, 0)
		assert.Same(t, backpack.AsHolder(), dest)
		assert.Equal(t, IndexWherever, idx)
	})
	t.Run("parent index at root", func(t *testing.T) {
		dest, _, _ := backpack.Container().QueryDestination(IndexParent, gold, 0)
		assert.Same(t, backpack.AsHolder(), dest)
	})
	t.Run("index on sub-container", func(t *testing.T) {
		dest, idx, destItem := backpack.Container().QueryDestination(1, gold, 0)
		assert.Same(t, bag.AsHolder(), dest)
		assert.Equal(t, IndexWherever, idx)
		assert.Nil(t, destItem)
	})
	t.Run("autostack", func(t *testing.T) {
		dest, idx, destItem := backpack.Container().QueryDestination(IndexWherever, gold, 0)
		assert.Same(t, backpack.AsHolder(), dest)
		assert.Equal(t, int32(0), idx)
		assert.Same(t, stack, destItem)
	})
	t.Run("autostack disabled", func(t *testing.T) {
		_, idx, destItem := backpack.Container().QueryDestination(IndexWherever, gold, FlagIgnoreAutoStack)
		assert.Equal(t, IndexWherever, idx)
		assert.Nil(t, destItem)
	})
	t.Run("out of range index", func(t *testing.T) {
		sword := newTestItem(t, &s, tmplSword, 0)
		_, idx, _ := backpack.Container().QueryDestination(99, sword, 0)
		assert.Equal(t, IndexWherever, idx)
	})
	t.Run("full container spills to parent", func(t *testing.T) {
		pouch := newTestItem(t, &s, tmplPouch, 0)
		bag.Container().AddThing(IndexWherever, pouch)
		pouch.Container().AddThing(IndexWherever, newTestItem(t, &s, tmplShield, 0))

		sword := newTestItem(t, &s, tmplSword, 0)
		dest, _, _ := pouch.Container().QueryDestination(IndexWherever, sword, 0)
		assert.Same(t, bag.AsHolder(), dest)
	})
}

func TestContainer_RemoveThingPartial(t *testing.T) {
	var s testSerials
	bag := newTestItem(t, &s, tmplBag, 0)
	gold := newTestItem(t, &s, tmplGold, 30)
	bag.Container().AddThing(IndexWherever, gold)

	bag.Container().RemoveThing(gold, 10)
	assert.Equal(t, uint32(20), gold.Count())
	assert.Same(t, bag.AsHolder(), gold.Holder())
	assert.Equal(t, int32(200), bag.Container().TotalWeight())

	bag.Container().RemoveThing(gold, 20)
	assert.Nil(t, gold.Holder())
	assert.Zero(t, bag.Container().Size())
	assert.Zero(t, bag.Container().TotalWeight())
}

func TestContainer_WeightPropagation(t *testing.T) {
	var s testSerials
	inv := NewInventory("Bob", 0)
	backpack := newTestItem(t, &s, tmplBag, 0)
	inv.AddThing(PaperdollBackpack, backpack)
	bag := newTestItem(t, &s, tmplBag, 0)
	backpack.Container().AddThing(IndexWherever, bag)

	gold := newTestItem(t, &s, tmplGold, 10)
	bag.Container().AddThing(IndexWherever, gold)
	assert.Equal(t, int32(800+800+100), inv.Weight())

	bag.Container().UpdateThing(gold, tmplGold, 50)
	assert.Equal(t, int32(800+800+500), inv.Weight())
	assert.Equal(t, int32(800+500), backpack.Container().TotalWeight())

	bag.Container().RemoveThing(gold, 50)
	assert.Equal(t, int32(1600), inv.Weight())
}

func TestContainer_ReplaceThing(t *testing.T) {
	var s testSerials
	bag := newTestItem(t, &s, tmplBag, 0).Container()
	sword := newTestItem(t, &s, tmplSword, 0)
	bag.AddThing(IndexWherever, sword)

	shield := newTestItem(t, &s, tmplShield, 0)
	bag.ReplaceThing(0, shield)

	assert.Same(t, shield, bag.ThingAt(0))
	assert.Nil(t, sword.Holder())
	assert.Same(t, Holder(bag), shield.Holder())
	assert.Equal(t, int32(6900), bag.TotalWeight())
}

func TestContainer_ItemTypeCountAndHoldingCount(t *testing.T) {
	var s testSerials
	bag := newTestItem(t, &s, tmplBag, 0)
	pouch := newTestItem(t, &s, tmplPouch, 0)
	bag.Container().AddThing(IndexWherever, newTestItem(t, &s, tmplGold, 30))
	bag.Container().AddThing(IndexWherever, newTestItem(t, &s, tmplGold, 12))
	bag.Container().AddThing(IndexWherever, pouch)
	pouch.Container().AddThing(IndexWherever, newTestItem(t, &s, tmplGold, 5))

	assert.Equal(t, uint32(42), bag.Container().ItemTypeCount(tmplGold.ItemID, -1), "direct children only")
	assert.Equal(t, 4, bag.Container().HoldingCount())
}

func TestContainer_ParentNotifications(t *testing.T) {
	var s testSerials
	inv := NewInventory("Bob", 0)

	type event struct {
		item  *Item
		added bool
		link  Link
	}
	var events []event
	inv.SetObserver(func(_ *Inventory, item *Item, added bool, link Link) {
		events = append(events, event{item, added, link})
	})

	backpack := newTestItem(t, &s, tmplBag, 0)
	inv.AddThing(PaperdollBackpack, backpack)
	gold := newTestItem(t, &s, tmplGold, 1)
	backpack.Container().AddThing(IndexWherever, gold)
	backpack.Container().PostAddNotification(gold, nil, 0, LinkOwner)

	require.Len(t, events, 1)
	assert.Equal(t, event{gold, true, LinkParent}, events[0])
}
