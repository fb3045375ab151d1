package model

import (
	"fmt"
	"log/slog"
)

// InventoryObserver получает уведомления об изменениях экипировки существа
// (включая изменения во вложенных контейнерах: link == LinkParent).
type InventoryObserver func(inv *Inventory, item *Item, added bool, link Link)

// Inventory представляет экипировку существа: paperdoll slots как holder.
// Индекс holder'а совпадает с paperdoll slot (PaperdollHead..PaperdollAmmo).
//
// Вес содержимого поддерживается инкрементально: контейнеры в слотах
// сообщают об изменениях через updateItemWeight.
type Inventory struct {
	owner    string
	slots    [PaperdollTotalSlots]*Item
	capacity int32 // 0 = без ограничения по весу
	weight   int32

	observer InventoryObserver
}

// NewInventory создаёт пустую экипировку.
//
// Parameters:
//   - owner: имя существа (для логов и Actor)
//   - capacity: максимальный переносимый вес (0 = без лимита)
func NewInventory(owner string, capacity int32) *Inventory {
	return &Inventory{owner: owner, capacity: capacity}
}

// Owner возвращает имя владельца.
func (inv *Inventory) Owner() string {
	return inv.owner
}

// SetObserver подключает hook владельца.
func (inv *Inventory) SetObserver(fn InventoryObserver) {
	inv.observer = fn
}

// Capacity возвращает лимит веса.
func (inv *Inventory) Capacity() int32 {
	return inv.capacity
}

// Weight возвращает суммарный вес экипировки с содержимым контейнеров.
func (inv *Inventory) Weight() int32 {
	return inv.weight
}

// FreeCapacity возвращает оставшийся лимит веса (-1 если лимита нет).
func (inv *Inventory) FreeCapacity() int32 {
	if inv.capacity == 0 {
		return -1
	}
	return max(inv.capacity-inv.weight, 0)
}

// Slot возвращает предмет в слоте (nil если пусто или слот невалиден).
func (inv *Inventory) Slot(slot int32) *Item {
	if slot < PaperdollFirst || slot > PaperdollLast {
		return nil
	}
	return inv.slots[slot]
}

// EquippedItems возвращает занятые слоты по порядку.
func (inv *Inventory) EquippedItems() []*Item {
	out := make([]*Item, 0, PaperdollTotalSlots)
	for slot := PaperdollFirst; slot <= PaperdollLast; slot++ {
		if it := inv.slots[slot]; it != nil {
			out = append(out, it)
		}
	}
	return out
}

// String implements fmt.Stringer.
func (inv *Inventory) String() string {
	return fmt.Sprintf("inventory(%s)", inv.owner)
}

// Parent implements Holder.
func (inv *Inventory) Parent() Holder { return nil }

// IsRemoved implements Holder.
func (inv *Inventory) IsRemoved() bool { return false }

// FirstIndex implements Holder.
func (inv *Inventory) FirstIndex() int32 { return PaperdollFirst }

// LastIndex implements Holder.
func (inv *Inventory) LastIndex() int32 { return PaperdollLast + 1 }

// ThingAt implements Holder.
func (inv *Inventory) ThingAt(index int32) *Item {
	return inv.Slot(index)
}

// ThingIndex implements Holder.
func (inv *Inventory) ThingIndex(item *Item) int32 {
	for slot := PaperdollFirst; slot <= PaperdollLast; slot++ {
		if inv.slots[slot] == item {
			return slot
		}
	}
	return -1
}

// ItemTypeCount считает единицы типа во всех слотах и вложенных контейнерах.
func (inv *Inventory) ItemTypeCount(itemID int32, subType int32) uint32 {
	var n uint32
	for _, it := range inv.EquippedItems() {
		if it.ItemID() == itemID && (subType == -1 || subType == it.SubType()) {
			n += it.Count()
		}
		if c := it.Container(); c != nil {
			n += containerTypeCount(c, itemID, subType)
		}
	}
	return n
}

func containerTypeCount(c *Container, itemID int32, subType int32) uint32 {
	n := c.ItemTypeCount(itemID, subType)
	for _, it := range c.items {
		if sub := it.Container(); sub != nil {
			n += containerTypeCount(sub, itemID, subType)
		}
	}
	return n
}

// addedWeight возвращает прирост веса, если count единиц item окажутся у владельца.
func (inv *Inventory) addedWeight(item *Item, count uint32) int32 {
	if item.holder != nil && topOf(item.holder) == Holder(inv) {
		return 0
	}
	if item.IsStackable() {
		return item.template.Weight * int32(count)
	}
	return item.Weight()
}

// hasCapacityFor проверяет вес; freed — вес предмета, уходящего в той же операции.
func (inv *Inventory) hasCapacityFor(item *Item, count uint32, flags Flags, freed int32) bool {
	if flags.Has(FlagNoLimit) || inv.capacity == 0 {
		return true
	}
	return inv.weight-freed+inv.addedWeight(item, count) <= inv.capacity
}

// QueryAdd implements Holder.
//
// Правила слотов:
//   - предмет должен подходить под slot mask (backpack принимает любой контейнер);
//   - two-handed оружие требует обе руки свободными;
//   - занятый слот с несовместимым предметом → RetNeedExchange
//     (с FlagReplacing занятость не проверяется).
func (inv *Inventory) QueryAdd(index int32, item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	if flags.Has(FlagChildIsOwner) {
		// предмет кладут во вложенный контейнер: проверяем только вес
		if !inv.hasCapacityFor(item, count, flags, 0) {
			return RetNotEnoughCapacity
		}
		return RetOK
	}
	if !item.template.Pickupable {
		return RetCannotPickup
	}
	if index < PaperdollFirst || index > PaperdollLast {
		// wherever, который не смог разрешить QueryDestination
		return RetNotEnoughRoom
	}

	if ret := inv.checkSlot(index, item); ret != RetOK {
		return ret
	}

	var freed int32
	if occupant := inv.slots[index]; occupant != nil && occupant != item {
		switch {
		case flags.Has(FlagReplacing):
			freed = occupant.Weight()
		case !occupant.IsStackable() || !occupant.Equals(item):
			return RetNeedExchange
		}
	}

	if !inv.hasCapacityFor(item, count, flags, freed) {
		return RetNotEnoughCapacity
	}
	return RetOK
}

func (inv *Inventory) checkSlot(index int32, item *Item) ReturnValue {
	tmpl := item.template
	switch index {
	case PaperdollBackpack:
		if tmpl.IsContainer() || tmpl.SlotMask.Has(PaperdollBackpack) {
			return RetOK
		}
		return RetCannotBeDressed
	case PaperdollRight, PaperdollLeft:
		if tmpl.SlotMask&SlotMaskHand == 0 {
			return RetCannotBeDressed
		}
		other := PaperdollLeft
		if index == PaperdollLeft {
			other = PaperdollRight
		}
		otherItem := inv.slots[other]
		if tmpl.TwoHanded {
			if otherItem != nil && otherItem != item {
				return RetBothHandsNeedToBeFree
			}
			return RetOK
		}
		if otherItem != nil && otherItem != item && otherItem.template.TwoHanded {
			return RetDropTwoHandedItem
		}
		return RetOK
	default:
		if !tmpl.SlotMask.Has(index) {
			if tmpl.SlotMask&SlotMaskHand != 0 {
				return RetPutThisObjectInYourHand
			}
			return RetCannotBeDressed
		}
		return RetOK
	}
}

// QueryMaxCount implements Holder.
func (inv *Inventory) QueryMaxCount(index int32, item *Item, count uint32, flags Flags) (ReturnValue, uint32) {
	var maxCount uint32

	if index < PaperdollFirst || index > PaperdollLast {
		for slot := PaperdollFirst; slot <= PaperdollLast; slot++ {
			occupant := inv.slots[slot]
			switch {
			case occupant == nil:
				if inv.QueryAdd(slot, item, item.Count(), flags, nil) == RetOK {
					if item.IsStackable() {
						maxCount += MaxStackCount
					} else {
						maxCount++
					}
				}
			case occupant.Container() != nil:
				_, n := occupant.Container().QueryMaxCount(IndexWherever, item, item.Count(), flags)
				maxCount += n
			case occupant != item && occupant.IsStackable() && occupant.Equals(item) && occupant.Count() < MaxStackCount:
				maxCount += MaxStackCount - occupant.Count()
			}
		}
	} else {
		occupant := inv.slots[index]
		switch {
		case occupant != nil:
			if occupant != item && occupant.IsStackable() && occupant.Equals(item) && occupant.Count() < MaxStackCount {
				maxCount = MaxStackCount - occupant.Count()
			}
		case inv.QueryAdd(index, item, count, flags, nil) == RetOK:
			if item.IsStackable() {
				maxCount = MaxStackCount
			} else {
				maxCount = 1
			}
		}
	}

	if maxCount < count {
		return RetNotEnoughRoom, maxCount
	}
	return RetOK, maxCount
}

// QueryRemove implements Holder.
func (inv *Inventory) QueryRemove(item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	if inv.ThingIndex(item) == -1 {
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
// Для IndexWherever (или 0 — «бросить на персонажа») ищет место в порядке:
// подходящий стак в слоте, свободный подходящий слот, затем контейнеры
// в ширину (сначала стак с местом, затем свободный слот контейнера).
func (inv *Inventory) QueryDestination(index int32, item *Item, flags Flags) (Holder, int32, *Item) {
	if index >= PaperdollFirst && index <= PaperdollLast {
		dest := inv.slots[index]
		if dest != nil && dest != item && dest.body != nil {
			return dest.body, IndexWherever, nil
		}
		return inv, index, dest
	}

	autoStack := !flags.Has(FlagIgnoreAutoStack) && item.IsStackable()

	var containers []*Container
	for slot := PaperdollFirst; slot <= PaperdollLast; slot++ {
		occupant := inv.slots[slot]
		if occupant == nil {
			if inv.QueryAdd(slot, item, item.Count(), flags, nil) == RetOK {
				return inv, slot, nil
			}
			continue
		}
		if occupant == item {
			continue
		}
		if autoStack && occupant.Equals(item) && occupant.Count() < MaxStackCount &&
			inv.QueryAdd(slot, item, item.Count(), flags, nil) == RetOK {
			return inv, slot, occupant
		}
		if c := occupant.Container(); c != nil {
			containers = append(containers, c)
		}
	}

	for i := 0; i < len(containers); i++ {
		c := containers[i]
		if !autoStack && !c.IsFull() {
			return c.self, IndexWherever, nil
		}
		for n, it := range c.items {
			if it == item {
				continue
			}
			if autoStack && it.Equals(item) && it.Count() < MaxStackCount {
				return c.self, int32(n), it
			}
			if sub := it.Container(); sub != nil {
				containers = append(containers, sub)
			}
		}
		if autoStack && !c.IsFull() {
			return c.self, IndexWherever, nil
		}
	}

	return inv, IndexWherever, nil
}

// AddThing implements Holder.
func (inv *Inventory) AddThing(index int32, item *Item) {
	if index < PaperdollFirst || index > PaperdollLast {
		slog.Error("inventory add to invalid slot",
			"inventory", inv.String(),
			"slot", index,
			"item", item.String())
		return
	}
	item.setHolder(inv)
	inv.slots[index] = item
	inv.updateItemWeight(item.Weight())
}

// UpdateThing implements Holder.
func (inv *Inventory) UpdateThing(item *Item, template *ItemTemplate, count uint32) {
	if inv.ThingIndex(item) == -1 {
		return
	}
	oldWeight := item.Weight()
	item.update(template, count)
	inv.updateItemWeight(item.Weight() - oldWeight)
}

// ReplaceThing implements Holder.
func (inv *Inventory) ReplaceThing(index int32, item *Item) {
	old := inv.Slot(index)
	if old == nil {
		return
	}
	inv.slots[index] = item
	item.setHolder(inv)
	old.setHolder(nil)
	inv.updateItemWeight(item.Weight() - old.Weight())
}

// RemoveThing implements Holder.
func (inv *Inventory) RemoveThing(item *Item, count uint32) {
	slot := inv.ThingIndex(item)
	if slot == -1 {
		return
	}
	if item.IsStackable() && count < item.Count() {
		oldWeight := item.Weight()
		item.count -= uint16(count)
		inv.updateItemWeight(item.Weight() - oldWeight)
		return
	}
	inv.slots[slot] = nil
	item.setHolder(nil)
	inv.updateItemWeight(-item.Weight())
}

// PostAddNotification implements Holder.
func (inv *Inventory) PostAddNotification(item *Item, oldParent Holder, index int32, link Link) {
	if inv.observer != nil {
		inv.observer(inv, item, true, link)
	}
}

// PostRemoveNotification implements Holder.
func (inv *Inventory) PostRemoveNotification(item *Item, newParent Holder, index int32, link Link) {
	if inv.observer != nil {
		inv.observer(inv, item, false, link)
	}
}

func (inv *Inventory) updateItemWeight(diff int32) {
	inv.weight += diff
}
