package transfer

import (
	"log/slog"

	"github.com/udisondev/itemcore/internal/model"
)

// TransformItem меняет тип и/или count предмета на месте.
//
// Предмет той же группы без тела-holder'а обновляется in place (UpdateThing).
// Иначе создаётся новый экземпляр и ставится на тот же индекс (ReplaceThing);
// содержимое контейнера переносится, если новый тип тоже контейнер.
//
// Возвращает предмет, который теперь лежит на месте старого
// (nil если предмет удалён).
//
// Parameters:
//   - item: предмет в holder'е
//   - newID: новый template ID
//   - newCount: новый count / sub-type (-1 — оставить)
func (e *Engine) TransformItem(item *model.Item, newID int32, newCount int32) *model.Item {
	if item.ItemID() == newID && (newCount == -1 || (newCount == item.SubType() && newCount != 0)) {
		return item
	}

	h := item.Holder()
	if h == nil {
		slog.Error("transform of unplaced item", "item", item.Serial(), "type", item.ItemID(), "new_type", newID)
		return nil
	}
	index := h.ThingIndex(item)
	if index == -1 {
		slog.Error("holder does not index its item",
			"item", item.Serial(),
			"type", item.ItemID(),
			"holder", h.String())
		return item
	}

	cur := item.Template()
	tmpl := e.catalog.Lookup(newID)
	if tmpl.IsEmpty() {
		slog.Error("transform into unknown type", "item", item.Serial(), "type", item.ItemID(), "new_type", newID)
		return item
	}

	if newCount == 0 && (cur.Stackable || cur.HasCharges) && tmpl == cur {
		e.RemoveItem(item, -1, false, model.FlagIgnoreNotMoveable)
		return nil
	}

	if tmpl.Group == cur.Group && item.AsHolder() == nil {
		e.transformInPlace(h, index, item, tmpl, newCount)
		return item
	}
	return e.replaceItem(h, index, item, tmpl, newCount)
}

func (e *Engine) transformInPlace(h model.Holder, index int32, item *model.Item, tmpl *model.ItemTemplate, newCount int32) {
	cur := item.Template()

	count := uint32(item.SubType())
	switch {
	case newCount >= 0:
		count = uint32(newCount)
	case tmpl != cur && tmpl.HasCharges:
		count = uint32(tmpl.Charges)
	}

	if tmpl != cur {
		// новый тип начинает свой decay заново
		e.decay.Stop(item)
		item.SetDuration(tmpl.DecayTime)
	}

	e.notifyRemoved(h, item, h, index)
	h.UpdateThing(item, tmpl, count)

	if cur.AlwaysOnTop != tmpl.AlwaysOnTop {
		// слой tile меняется: переложить
		h.RemoveThing(item, item.Count())
		h.AddThing(model.IndexWherever, item)
	}
	e.notifyAdded(h, item, h)
	e.startDecay(item)
}

func (e *Engine) replaceItem(h model.Holder, index int32, item *model.Item, tmpl *model.ItemTemplate, newCount int32) *model.Item {
	count := uint16(0)
	if newCount > 0 {
		count = uint16(newCount)
	}
	newItem, err := e.catalog.CreateItem(tmpl.ItemID, count)
	if err != nil {
		slog.Error("create replacement item", "item", item.Serial(), "new_type", tmpl.ItemID, "error", err)
		return item
	}

	if oldC, newC := item.Container(), newItem.Container(); oldC != nil && newC != nil {
		for _, child := range oldC.Items() {
			oldC.RemoveThing(child, child.Count())
			newC.AddItemBack(child)
		}
	}

	h.ReplaceThing(index, newItem)
	for _, o := range e.observers {
		o.OnItemRemoved(h, item, index)
	}
	h.PostRemoveNotification(item, h, index, model.LinkOwner)
	e.notifyAdded(h, newItem, h)

	e.discard(item)
	e.startDecay(newItem)
	return newItem
}
