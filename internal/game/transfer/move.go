package transfer

import (
	"log/slog"

	"github.com/udisondev/itemcore/internal/model"
)

// MoveItem переносит count единиц item из from в to.
//
// Возвращает количество реально перенесённых единиц. Если поместилась
// только часть стака, возвращается capacity-исход вместе с moved > 0.
//
// Parameters:
//   - from: текущий holder предмета
//   - to: целевой holder (может перенаправить через QueryDestination)
//   - index: слот в to или model.IndexWherever
//   - count: сколько единиц переносить (для нестакаемых игнорируется)
//   - actor: инициатор (может быть nil)
//   - flags: модификаторы проверок
func (e *Engine) MoveItem(from, to model.Holder, index int32, item *model.Item, count uint32, actor model.Actor, flags model.Flags) (uint32, model.ReturnValue) {
	if item.Holder() != from {
		slog.Error("move from foreign holder",
			"item", item.Serial(),
			"type", item.ItemID(),
			"holder", from.String())
		return 0, model.RetNotPossible
	}
	if count == 0 {
		return 0, model.RetNotPossible
	}

	to, index, toItem, ok := e.resolve(to, index, item, flags)
	if !ok {
		return 0, model.RetNotPossible
	}

	// перенос на то же место
	if toItem == item || (to == from && index != model.IndexWherever && from.ThingIndex(item) == index) {
		return 0, model.RetOK
	}

	ret := to.QueryAdd(index, item, count, flags, actor)
	if ret == model.RetNeedExchange && toItem != nil {
		return e.exchange(from, to, index, item, toItem, count, actor, flags)
	}
	if ret != model.RetOK {
		return 0, ret
	}

	retMax, maxCount := to.QueryMaxCount(index, item, count, flags)
	if retMax != model.RetOK && maxCount == 0 {
		return 0, retMax
	}

	m := item.Count()
	if item.IsStackable() {
		m = min(count, maxCount)
	}

	if ret := from.QueryRemove(item, m, flags, actor); ret != model.RetOK {
		return 0, ret
	}

	itemIndex := from.ThingIndex(item)
	from.RemoveThing(item, m)

	moveItem := item
	var updated *model.Item
	spilled := false
	if item.IsStackable() {
		var n uint32
		if toItem != nil && toItem.Equals(item) {
			n = min(model.MaxStackCount-toItem.Count(), m)
			to.UpdateThing(toItem, toItem.Template(), toItem.Count()+n)
			updated = toItem
			spilled = n < m
		}

		switch rest := m - n; {
		case rest == 0:
			moveItem = nil
		case item.Holder() == nil:
			e.setCount(item, rest)
		default:
			moveItem = item.Clone(e.catalog.NewSerial)
			e.setCount(moveItem, rest)
		}

		if item.Holder() == nil && moveItem != item {
			e.discard(item)
		}
	}

	if moveItem != nil {
		to.AddThing(index, moveItem)
	}

	e.notifyRemoved(from, item, to, itemIndex)

	if moveItem != nil {
		e.notifyAdded(to, moveItem, from)
		if moveItem.Holder() == nil {
			// trash
			e.discard(moveItem)
		} else {
			e.startDecay(moveItem)
		}
	}
	if updated != nil {
		e.notifyAdded(to, updated, from)
		e.startDecay(updated)
	}

	if item.IsStackable() && maxCount < count {
		return m, retMax
	}
	if spilled {
		// целевой стак не вместил всё: остаток лёг рядом отдельным предметом
		return m, model.RetNotEnoughRoom
	}
	return m, model.RetOK
}

// exchange меняет item и toItem местами: item встаёт в слот index holder'а to,
// toItem занимает освободившееся место item в from. Только один уровень
// и только перенос предмета целиком.
func (e *Engine) exchange(from, to model.Holder, index int32, item, toItem *model.Item, count uint32, actor model.Actor, flags model.Flags) (uint32, model.ReturnValue) {
	m := item.Count()
	if item.IsStackable() && count < m {
		return 0, model.RetNeedExchange
	}

	fromIndex := from.ThingIndex(item)
	if ret := to.QueryAdd(index, item, m, flags|model.FlagReplacing, actor); ret != model.RetOK {
		return 0, ret
	}
	if ret := from.QueryAdd(fromIndex, toItem, toItem.Count(), flags|model.FlagReplacing, actor); ret != model.RetOK {
		return 0, ret
	}
	if ret := from.QueryRemove(item, m, flags, actor); ret != model.RetOK {
		return 0, ret
	}
	if ret := to.QueryRemove(toItem, toItem.Count(), flags, actor); ret != model.RetOK {
		return 0, ret
	}

	toIndex := to.ThingIndex(toItem)
	from.RemoveThing(item, m)
	to.RemoveThing(toItem, toItem.Count())
	from.AddThing(fromIndex, toItem)
	to.AddThing(index, item)

	e.notifyRemoved(from, item, to, fromIndex)
	e.notifyRemoved(to, toItem, from, toIndex)
	e.notifyAdded(from, toItem, to)
	e.notifyAdded(to, item, from)
	e.startDecay(toItem)
	e.startDecay(item)

	return m, model.RetOK
}

// AddItem добавляет неразмещённый предмет в holder.
// В режиме test выполняет только проверки.
func (e *Engine) AddItem(to model.Holder, item *model.Item, index int32, flags model.Flags, test bool) model.ReturnValue {
	ret, _ := e.AddItemRemainder(to, item, index, flags, test)
	return ret
}

// AddItemRemainder работает как AddItem, но сообщает, сколько единиц не поместилось
// после частичного слияния. Непоместившийся остаток остаётся в item
// (без holder'а) и принадлежит вызывающему.
func (e *Engine) AddItemRemainder(to model.Holder, item *model.Item, index int32, flags model.Flags, test bool) (model.ReturnValue, uint32) {
	if item.Holder() != nil {
		slog.Error("add of linked item",
			"item", item.Serial(),
			"type", item.ItemID(),
			"holder", item.Holder().String())
		return model.RetNotPossible, 0
	}
	if item.IsDestroyed() {
		slog.Error("add of destroyed item", "item", item.Serial(), "type", item.ItemID())
		return model.RetNotPossible, 0
	}

	dest, destIndex, toItem, ok := e.resolve(to, index, item, flags)
	if !ok {
		return model.RetNotPossible, 0
	}

	if ret := dest.QueryAdd(destIndex, item, item.Count(), flags, nil); ret != model.RetOK {
		return ret, 0
	}

	// Полный объём проверяется по исходному holder'у: dest может вместить только часть.
	ret, maxCount := to.QueryMaxCount(model.IndexWherever, item, item.Count(), flags)
	if ret != model.RetOK {
		return ret, 0
	}

	if test {
		return model.RetOK, 0
	}

	if !item.IsStackable() || toItem == nil || toItem == item || !toItem.Equals(item) {
		e.place(dest, destIndex, item)
		return model.RetOK, 0
	}

	m := min(item.Count(), maxCount)
	n := min(model.MaxStackCount-toItem.Count(), m)
	dest.UpdateThing(toItem, toItem.Template(), toItem.Count()+n)

	var remainder uint32
	switch rest := m - n; {
	case rest == 0:
		e.discard(item)
	case rest == item.Count():
		e.place(dest, destIndex, item)
	default:
		e.setCount(item, rest)
		if ret, rem := e.AddItemRemainder(to, item, model.IndexWherever, flags, false); ret != model.RetOK {
			remainder = rest
		} else {
			remainder = rem
		}
	}

	e.notifyAdded(dest, toItem, nil)
	e.startDecay(toItem)
	return model.RetOK, remainder
}

func (e *Engine) place(dest model.Holder, index int32, item *model.Item) {
	dest.AddThing(index, item)
	e.notifyAdded(dest, item, nil)
	if item.Holder() == nil {
		e.discard(item)
		return
	}
	e.startDecay(item)
}

// RemoveItem забирает count единиц предмета из его holder'а (count < 0 — весь предмет).
// Полностью удалённый предмет снимается с decay и ставится в очередь освобождения.
func (e *Engine) RemoveItem(item *model.Item, count int32, test bool, flags model.Flags) model.ReturnValue {
	h := item.Holder()
	if h == nil {
		return model.RetNotPossible
	}

	n := item.Count()
	if count >= 0 {
		n = uint32(count)
	}

	if ret := h.QueryRemove(item, n, flags|model.FlagIgnoreNotMoveable, nil); ret != model.RetOK {
		return ret
	}
	if test {
		return model.RetOK
	}

	index := h.ThingIndex(item)
	h.RemoveThing(item, n)
	if item.Holder() == nil {
		e.discard(item)
	}
	e.notifyRemoved(h, item, nil, index)
	return model.RetOK
}

func (e *Engine) setCount(item *model.Item, count uint32) {
	if err := item.SetCount(count); err != nil {
		slog.Error("set item count", "item", item.Serial(), "type", item.ItemID(), "error", err)
	}
}
