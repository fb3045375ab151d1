package model

import "fmt"

// TrashHolder уничтожает всё, что в него кладут.
type TrashHolder struct {
	item   *Item
	onBurn func(*Item)
}

// SetOnBurn задаёт hook, вызываемый для каждого уничтоженного предмета.
func (t *TrashHolder) SetOnBurn(fn func(*Item)) {
	t.onBurn = fn
}

// Item возвращает предмет-trash.
func (t *TrashHolder) Item() *Item {
	return t.item
}

// String implements fmt.Stringer.
func (t *TrashHolder) String() string {
	return fmt.Sprintf("trash#%d", t.item.serial)
}

// QueryAdd implements Holder.
func (t *TrashHolder) QueryAdd(index int32, item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	if item == t.item {
		return RetThisIsImpossible
	}
	return RetOK
}

// QueryMaxCount implements Holder.
func (t *TrashHolder) QueryMaxCount(index int32, item *Item, count uint32, flags Flags) (ReturnValue, uint32) {
	return RetOK, count
}

// QueryRemove implements Holder.
func (t *TrashHolder) QueryRemove(item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	return RetNotPossible
}

// QueryDestination implements Holder.
func (t *TrashHolder) QueryDestination(index int32, item *Item, flags Flags) (Holder, int32, *Item) {
	return t, index, nil
}

// AddThing помечает предмет удалённым: у него больше нет holder'а.
// Освобождение ссылок делает вызывающий (transfer engine).
func (t *TrashHolder) AddThing(index int32, item *Item) {
	item.setHolder(nil)
	if t.onBurn != nil {
		t.onBurn(item)
	}
}

// UpdateThing implements Holder.
func (t *TrashHolder) UpdateThing(item *Item, template *ItemTemplate, count uint32) {}

// ReplaceThing implements Holder.
func (t *TrashHolder) ReplaceThing(index int32, item *Item) {}

// RemoveThing implements Holder.
func (t *TrashHolder) RemoveThing(item *Item, count uint32) {}

// PostAddNotification implements Holder.
func (t *TrashHolder) PostAddNotification(item *Item, oldParent Holder, index int32, link Link) {}

// PostRemoveNotification implements Holder.
func (t *TrashHolder) PostRemoveNotification(item *Item, newParent Holder, index int32, link Link) {}

// Parent implements Holder.
func (t *TrashHolder) Parent() Holder { return t.item.holder }

// IsRemoved implements Holder.
func (t *TrashHolder) IsRemoved() bool { return t.item.IsRemoved() }

// ThingIndex implements Holder.
func (t *TrashHolder) ThingIndex(item *Item) int32 { return -1 }

// ThingAt implements Holder.
func (t *TrashHolder) ThingAt(index int32) *Item { return nil }

// FirstIndex implements Holder.
func (t *TrashHolder) FirstIndex() int32 { return 0 }

// LastIndex implements Holder.
func (t *TrashHolder) LastIndex() int32 { return 0 }

// ItemTypeCount implements Holder.
func (t *TrashHolder) ItemTypeCount(itemID int32, subType int32) uint32 { return 0 }
