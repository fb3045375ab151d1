package model

import (
	"fmt"
	"log/slog"
	"slices"
)

// Container описывает предмет со слотами (backpack, bag, corpse).
// Новые предметы кладутся в начало списка (index 0 у самого свежего).
type Container struct {
	item        *Item
	self        Holder // holder, который видят дети (DepotLocker для depot)
	items       []*Item
	totalWeight int32
	root        bool // корневой контейнер без holder'а (depot игрока)
}

func newContainer(item *Item) *Container {
	c := &Container{item: item}
	c.self = c
	return c
}

// Item возвращает предмет-контейнер.
func (c *Container) Item() *Item {
	return c.item
}

// Capacity возвращает количество слотов.
func (c *Container) Capacity() int32 {
	return c.item.template.Capacity
}

// Size возвращает количество занятых слотов.
func (c *Container) Size() int {
	return len(c.items)
}

// IsFull returns true if no slot is free.
func (c *Container) IsFull() bool {
	return int32(len(c.items)) >= c.Capacity()
}

// Items возвращает копию списка предметов.
func (c *Container) Items() []*Item {
	return slices.Clone(c.items)
}

// TotalWeight возвращает вес содержимого (рекурсивно).
func (c *Container) TotalWeight() int32 {
	return c.totalWeight
}

// HoldingCount возвращает количество предметов внутри, включая вложенные контейнеры.
func (c *Container) HoldingCount() int {
	n := 0
	for _, it := range c.items {
		n++
		if sub := it.Container(); sub != nil {
			n += sub.HoldingCount()
		}
	}
	return n
}

// SetRoot помечает контейнер как корневой holder (не лежит ни в чём, но жив).
func (c *Container) SetRoot(root bool) {
	c.root = root
}

// String implements fmt.Stringer.
func (c *Container) String() string {
	return fmt.Sprintf("container#%d(%d)", c.item.serial, c.item.ItemID())
}

// Parent возвращает holder, в котором лежит сам контейнер.
func (c *Container) Parent() Holder {
	return c.item.holder
}

// IsRemoved returns true if the container is detached from the world.
func (c *Container) IsRemoved() bool {
	if c.root {
		return c.item.destroyed
	}
	return c.item.IsRemoved()
}

// FirstIndex implements Holder.
func (c *Container) FirstIndex() int32 {
	return 0
}

// LastIndex implements Holder.
func (c *Container) LastIndex() int32 {
	return int32(len(c.items))
}

// ThingAt implements Holder.
func (c *Container) ThingAt(index int32) *Item {
	if index < 0 || int(index) >= len(c.items) {
		return nil
	}
	return c.items[index]
}

// ThingIndex implements Holder.
func (c *Container) ThingIndex(item *Item) int32 {
	for i, it := range c.items {
		if it == item {
			return int32(i)
		}
	}
	return -1
}

// ItemTypeCount считает единицы указанного типа среди прямых детей.
func (c *Container) ItemTypeCount(itemID int32, subType int32) uint32 {
	var n uint32
	for _, it := range c.items {
		if it.ItemID() == itemID && (subType == -1 || subType == it.SubType()) {
			n += it.Count()
		}
	}
	return n
}

// QueryAdd implements Holder.
func (c *Container) QueryAdd(index int32, item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	if item == c.item {
		return RetThisIsImpossible
	}
	if !item.template.Pickupable {
		return RetCannotPickup
	}
	// Нельзя положить контейнер внутрь самого себя (на любую глубину).
	if item.body != nil {
		for h := c.self; h != nil; h = h.Parent() {
			if h == item.body {
				return RetThisIsImpossible
			}
		}
	}
	if index == IndexWherever && !flags.Has(FlagNoLimit) && c.IsFull() {
		return RetContainerNotEnoughRoom
	}

	if top := topOf(c.self); top != c.self {
		return top.QueryAdd(IndexWherever, item, count, flags|FlagChildIsOwner, actor)
	}
	return RetOK
}

// QueryMaxCount implements Holder.
func (c *Container) QueryMaxCount(index int32, item *Item, count uint32, flags Flags) (ReturnValue, uint32) {
	if flags.Has(FlagNoLimit) {
		return RetOK, max(1, count)
	}

	freeSlots := uint32(max(c.Capacity()-int32(len(c.items)), 0))

	if !item.IsStackable() {
		if freeSlots == 0 {
			return RetContainerNotEnoughRoom, 0
		}
		return RetOK, freeSlots
	}

	var n uint32
	if index == IndexWherever {
		for _, it := range c.items {
			if it != item && it.Equals(item) && it.Count() < MaxStackCount {
				n += MaxStackCount - it.Count()
			}
		}
	} else if dest := c.ThingAt(index); dest != nil && dest != item && dest.Equals(item) && dest.Count() < MaxStackCount {
		n = MaxStackCount - dest.Count()
	}

	maxCount := freeSlots*MaxStackCount + n
	if maxCount < count {
		return RetContainerNotEnoughRoom, maxCount
	}
	return RetOK, maxCount
}

// QueryRemove implements Holder.
func (c *Container) QueryRemove(item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	if c.ThingIndex(item) == -1 {
		return RetNotPossible
	}
	if count == 0 || (item.IsStackable() && count > item.Count()) {
		return RetNotPossible
	}
	if !item.template.Moveable && !flags.Has(FlagIgnoreNotMoveable) {
		return RetNotMoveable
	}
	return RetOK
}

// QueryDestination implements Holder.
//
// Правила перенаправления:
//   - IndexParent → родительский контейнер;
//   - index указывает на предмет-holder → внутрь него;
//   - stackable предмет ищет стак того же типа с местом;
//   - контейнер полон → родительский контейнер.
func (c *Container) QueryDestination(index int32, item *Item, flags Flags) (Holder, int32, *Item) {
	if index == IndexParent {
		if p := asContainer(c.Parent()); p != nil {
			return p.self, IndexWherever, nil
		}
		return c.self, IndexWherever, nil
	}
	if index < 0 || index >= c.Capacity() {
		index = IndexWherever
	}

	var destItem *Item
	if index != IndexWherever {
		destItem = c.ThingAt(index)
		if destItem != nil && destItem != item && destItem.body != nil {
			return destItem.body, IndexWherever, nil
		}
	}

	if !flags.Has(FlagIgnoreAutoStack) && item.IsStackable() && item.holder != c.self {
		if destItem != nil && destItem.Equals(item) && destItem.Count() < MaxStackCount {
			return c.self, index, destItem
		}
		for n, it := range c.items {
			if it != item && it.Equals(item) && it.Count() < MaxStackCount {
				return c.self, int32(n), it
			}
		}
	}

	if index == IndexWherever && !flags.Has(FlagNoLimit) && c.IsFull() {
		if p := asContainer(c.Parent()); p != nil {
			return p.self, IndexWherever, nil
		}
	}
	return c.self, index, destItem
}

// AddThing implements Holder.
func (c *Container) AddThing(index int32, item *Item) {
	if index >= c.Capacity() {
		slog.Error("container add out of range",
			"container", c.String(),
			"index", index,
			"item", item.String())
	}
	item.setHolder(c.self)
	c.items = slices.Insert(c.items, 0, item)
	c.updateItemWeight(item.Weight())
}

// AddItemBack добавляет предмет в конец списка (загрузка, клонирование).
func (c *Container) AddItemBack(item *Item) {
	item.setHolder(c.self)
	c.items = append(c.items, item)
	c.updateItemWeight(item.Weight())
}

// UpdateThing implements Holder.
func (c *Container) UpdateThing(item *Item, template *ItemTemplate, count uint32) {
	if c.ThingIndex(item) == -1 {
		slog.Error("container update of foreign item", "container", c.String(), "item", item.String())
		return
	}
	oldWeight := item.Weight()
	item.update(template, count)
	c.updateItemWeight(item.Weight() - oldWeight)
}

// ReplaceThing implements Holder.
func (c *Container) ReplaceThing(index int32, item *Item) {
	old := c.ThingAt(index)
	if old == nil {
		slog.Error("container replace of empty slot", "container", c.String(), "index", index)
		return
	}
	c.items[index] = item
	item.setHolder(c.self)
	old.setHolder(nil)
	c.updateItemWeight(item.Weight() - old.Weight())
}

// RemoveThing implements Holder.
func (c *Container) RemoveThing(item *Item, count uint32) {
	index := c.ThingIndex(item)
	if index == -1 {
		slog.Error("container remove of foreign item", "container", c.String(), "item", item.String())
		return
	}
	if item.IsStackable() && count < item.Count() {
		oldWeight := item.Weight()
		item.count -= uint16(count)
		c.updateItemWeight(item.Weight() - oldWeight)
		return
	}
	c.items = slices.Delete(c.items, int(index), int(index)+1)
	item.setHolder(nil)
	c.updateItemWeight(-item.Weight())
}

// PostAddNotification implements Holder: поднимает событие к родителю.
func (c *Container) PostAddNotification(item *Item, oldParent Holder, index int32, link Link) {
	if p := c.Parent(); p != nil {
		p.PostAddNotification(item, oldParent, index, LinkParent)
	}
}

// PostRemoveNotification implements Holder.
func (c *Container) PostRemoveNotification(item *Item, newParent Holder, index int32, link Link) {
	if p := c.Parent(); p != nil {
		p.PostRemoveNotification(item, newParent, index, LinkParent)
	}
}

func (c *Container) updateItemWeight(diff int32) {
	if diff == 0 {
		return
	}
	c.totalWeight += diff
	if wt, ok := c.Parent().(weightTracker); ok {
		wt.updateItemWeight(diff)
	}
}

func (c *Container) cloneInto(dst *Container, nextSerial func() uint32) {
	for _, it := range c.items {
		dst.AddItemBack(it.Clone(nextSerial))
	}
}

// asContainer возвращает контейнерную часть holder'а (nil для tile/inventory/...).
func asContainer(h Holder) *Container {
	switch v := h.(type) {
	case *Container:
		return v
	case *DepotLocker:
		return v.Container
	default:
		return nil
	}
}

// topOf поднимается до корневого holder'а.
func topOf(h Holder) Holder {
	for {
		p := h.Parent()
		if p == nil {
			return h
		}
		h = p
	}
}
