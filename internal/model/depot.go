package model

import "fmt"

// DefaultMaxDepotItems — лимит предметов в depot по умолчанию.
const DefaultMaxDepotItems = 2000

// DepotLocker является корневым контейнером хранилища игрока.
// Лимит считается по всем предметам внутри, включая вложенные контейнеры.
type DepotLocker struct {
	*Container

	maxDepotItems int
	dirty         bool
}

func newDepotLocker(item *Item) *DepotLocker {
	d := &DepotLocker{
		Container:     &Container{item: item, root: true},
		maxDepotItems: DefaultMaxDepotItems,
	}
	d.self = d
	return d
}

// SetMaxDepotItems задаёт лимит (0 — без лимита).
func (d *DepotLocker) SetMaxDepotItems(n int) {
	d.maxDepotItems = n
}

// MaxDepotItems возвращает лимит предметов.
func (d *DepotLocker) MaxDepotItems() int {
	return d.maxDepotItems
}

// IsDirty returns true if the depot changed since the last save.
func (d *DepotLocker) IsDirty() bool {
	return d.dirty
}

// MarkSaved сбрасывает dirty flag после сохранения.
func (d *DepotLocker) MarkSaved() {
	d.dirty = false
}

// String implements fmt.Stringer.
func (d *DepotLocker) String() string {
	return fmt.Sprintf("depot#%d", d.item.serial)
}

// QueryAdd implements Holder.
func (d *DepotLocker) QueryAdd(index int32, item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	if !flags.Has(FlagNoLimit) && d.maxDepotItems > 0 {
		added := 1
		if sub := item.Container(); sub != nil {
			added += sub.HoldingCount()
		}
		// Перенос внутри того же depot не увеличивает счёт (кроме split стака).
		if item.holder != nil && topOf(item.holder) == Holder(d) {
			added = 0
			if item.IsStackable() && count < item.Count() {
				added = 1
			}
		}
		if d.HoldingCount()+added > d.maxDepotItems {
			return RetDepotIsFull
		}
	}
	if flags.Has(FlagChildIsOwner) {
		return RetOK
	}
	return d.Container.QueryAdd(index, item, count, flags, actor)
}

// PostAddNotification implements Holder.
func (d *DepotLocker) PostAddNotification(item *Item, oldParent Holder, index int32, link Link) {
	d.dirty = true
	d.Container.PostAddNotification(item, oldParent, index, link)
}

// PostRemoveNotification implements Holder.
func (d *DepotLocker) PostRemoveNotification(item *Item, newParent Holder, index int32, link Link) {
	d.dirty = true
	d.Container.PostRemoveNotification(item, newParent, index, link)
}
