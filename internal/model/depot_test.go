package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepotLocker_IsRoot(t *testing.T) {
	var s testSerials
	depot := newTestItem(t, &s, tmplDepot, 0).DepotLocker()
	require.NotNil(t, depot)

	assert.False(t, depot.IsRemoved(), "depot is alive without a holder")
	sword := newTestItem(t, &s, tmplSword, 0)
	depot.AddThing(IndexWherever, sword)
	assert.False(t, sword.IsRemoved())
	assert.Same(t, Holder(depot), sword.Holder())
	assert.Same(t, Holder(depot), sword.TopHolder())
}

func TestDepotLocker_Limit(t *testing.T) {
	var s testSerials
	depot := newTestItem(t, &s, tmplDepot, 0).DepotLocker()
	depot.SetMaxDepotItems(3)

	bag := newTestItem(t, &s, tmplBag, 0)
	bag.Container().AddThing(IndexWherever, newTestItem(t, &s, tmplSword, 0))
	depot.AddThing(IndexWherever, bag)
	assert.Equal(t, 2, depot.HoldingCount())

	sword := newTestItem(t, &s, tmplSword, 0)
	assert.Equal(t, RetOK, depot.QueryAdd(IndexWherever, sword, 1, 0, nil))

	full := newTestItem(t, &s, tmplBag, 0)
	full.Container().AddThing(IndexWherever, newTestItem(t, &s, tmplShield, 0))
	assert.Equal(t, RetDepotIsFull, depot.QueryAdd(IndexWherever, full, 1, 0, nil), "contents count toward the limit")
	assert.Equal(t, RetOK, depot.QueryAdd(IndexWherever, full, 1, FlagNoLimit, nil))

	t.Run("nested container asks the depot", func(t *testing.T) {
		depot.AddThing(IndexWherever, sword)
		other := newTestItem(t, &s, tmplSword, 0)
		assert.Equal(t, RetDepotIsFull, bag.Container().QueryAdd(IndexWherever, other, 1, 0, nil))
	})

	t.Run("move inside depot is free", func(t *testing.T) {
		assert.Equal(t, RetOK, bag.Container().QueryAdd(IndexWherever, sword, 1, 0, nil))
	})
}

func TestDepotLocker_Dirty(t *testing.T) {
	var s testSerials
	depot := newTestItem(t, &s, tmplDepot, 0).DepotLocker()
	bag := newTestItem(t, &s, tmplBag, 0)
	depot.AddThing(IndexWherever, bag)
	assert.False(t, depot.IsDirty(), "raw mutation does not notify")

	gold := newTestItem(t, &s, tmplGold, 1)
	bag.Container().AddThing(IndexWherever, gold)
	bag.Container().PostAddNotification(gold, nil, 0, LinkOwner)
	assert.True(t, depot.IsDirty(), "notification from nested container marks depot")

	depot.MarkSaved()
	assert.False(t, depot.IsDirty())
}

type testPostOffice map[string]*DepotLocker

func (p testPostOffice) LockerFor(name string) (*DepotLocker, bool) {
	d, ok := p[name]
	return d, ok
}

func TestMailbox_Redirect(t *testing.T) {
	var s testSerials
	aliceDepot := newTestItem(t, &s, tmplDepot, 0).DepotLocker()
	mailbox := newTestItem(t, &s, tmplMailbox, 0).Mailbox()
	mailbox.SetPostOffice(testPostOffice{"Alice": aliceDepot})

	t.Run("letter to known player", func(t *testing.T) {
		letter := newTestItem(t, &s, tmplLetter, 0)
		letter.SetText("  Alice \nsee you at the temple")
		dest, idx, destItem := mailbox.QueryDestination(IndexWherever, letter, 0)
		assert.Same(t, Holder(aliceDepot), dest)
		assert.Equal(t, IndexWherever, idx)
		assert.Nil(t, destItem)
	})
	t.Run("parcel label", func(t *testing.T) {
		parcel := newTestItem(t, &s, tmplParcel, 0)
		label := newTestItem(t, &s, tmplLabel, 0)
		label.SetText("Alice")
		parcel.Container().AddThing(IndexWherever, newTestItem(t, &s, tmplSword, 0))
		parcel.Container().AddThing(IndexWherever, label)

		assert.Equal(t, "Alice", Addressee(parcel))
		dest, _, _ := mailbox.QueryDestination(IndexWherever, parcel, 0)
		assert.Same(t, Holder(aliceDepot), dest)
	})
	t.Run("unknown addressee", func(t *testing.T) {
		letter := newTestItem(t, &s, tmplLetter, 0)
		letter.SetText("Nobody")
		dest, _, _ := mailbox.QueryDestination(IndexWherever, letter, 0)
		assert.Same(t, Holder(mailbox), dest)
		assert.Equal(t, RetNotPossible, mailbox.QueryAdd(IndexWherever, letter, 1, 0, nil))
	})
	t.Run("not mailable", func(t *testing.T) {
		sword := newTestItem(t, &s, tmplSword, 0)
		sword.SetText("Alice")
		dest, _, _ := mailbox.QueryDestination(IndexWherever, sword, 0)
		assert.Same(t, Holder(mailbox), dest)
	})
}

func TestTrashHolder_Burns(t *testing.T) {
	var s testSerials
	trashItem := newTestItem(t, &s, tmplTrash, 0)
	trash := trashItem.AsHolder().(*TrashHolder)

	var burnt []*Item
	trash.SetOnBurn(func(item *Item) { burnt = append(burnt, item) })

	sword := newTestItem(t, &s, tmplSword, 0)
	assert.Equal(t, RetOK, trash.QueryAdd(IndexWherever, sword, 1, 0, nil))
	assert.Equal(t, RetThisIsImpossible, trash.QueryAdd(IndexWherever, trashItem, 1, 0, nil))

	trash.AddThing(IndexWherever, sword)
	assert.Nil(t, sword.Holder())
	assert.True(t, sword.IsRemoved())
	assert.Equal(t, []*Item{sword}, burnt)
	assert.Equal(t, int32(-1), trash.ThingIndex(sword))
	assert.Equal(t, RetNotPossible, trash.QueryRemove(sword, 1, 0, nil))
}
