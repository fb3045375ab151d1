package model

import (
	"log/slog"
	"slices"
)

// Tile хранит предметы клетки карты. Порядок индексов:
// ground (0, если есть), always-on-top предметы по TopOrder,
// маркеры существ, обычные предметы (новые первыми).
//
// Tile является корнем цепочки holder'ов: Parent() всегда nil.
type Tile struct {
	loc       Location
	ground    *Item
	topItems  []*Item
	creatures int
	downItems []*Item

	maxItems int // 0 = без лимита
}

// NewTile создаёт пустой tile без ground.
func NewTile(loc Location, maxItems int) *Tile {
	return &Tile{loc: loc, maxItems: maxItems}
}

// Location возвращает координаты.
func (t *Tile) Location() Location {
	return t.loc
}

// Ground возвращает ground-предмет (nil если нет).
func (t *Tile) Ground() *Item {
	return t.ground
}

// AddCreature помечает существо на tile (занимает индекс, блокирует solid-предметы).
func (t *Tile) AddCreature() {
	t.creatures++
}

// RemoveCreature снимает маркер существа.
func (t *Tile) RemoveCreature() {
	if t.creatures > 0 {
		t.creatures--
	}
}

// ItemCount возвращает количество предметов без ground.
func (t *Tile) ItemCount() int {
	return len(t.topItems) + len(t.downItems)
}

// Items возвращает все предметы в порядке индексов.
func (t *Tile) Items() []*Item {
	out := make([]*Item, 0, 1+t.ItemCount())
	if t.ground != nil {
		out = append(out, t.ground)
	}
	out = append(out, t.topItems...)
	return append(out, t.downItems...)
}

// TopDownItem возвращает верхний обычный предмет.
func (t *Tile) TopDownItem() *Item {
	if len(t.downItems) == 0 {
		return nil
	}
	return t.downItems[0]
}

// String implements fmt.Stringer.
func (t *Tile) String() string {
	return "tile" + t.loc.String()
}

// Parent implements Holder.
func (t *Tile) Parent() Holder { return nil }

// IsRemoved implements Holder.
func (t *Tile) IsRemoved() bool { return false }

// FirstIndex implements Holder.
func (t *Tile) FirstIndex() int32 { return 0 }

// LastIndex implements Holder.
func (t *Tile) LastIndex() int32 {
	n := len(t.topItems) + t.creatures + len(t.downItems)
	if t.ground != nil {
		n++
	}
	return int32(n)
}

// ThingAt implements Holder. Индексы существ возвращают nil.
func (t *Tile) ThingAt(index int32) *Item {
	if index < 0 {
		return nil
	}
	i := int(index)
	if t.ground != nil {
		if i == 0 {
			return t.ground
		}
		i--
	}
	if i < len(t.topItems) {
		return t.topItems[i]
	}
	i -= len(t.topItems)
	if i < t.creatures {
		return nil
	}
	i -= t.creatures
	if i < len(t.downItems) {
		return t.downItems[i]
	}
	return nil
}

// ThingIndex implements Holder.
func (t *Tile) ThingIndex(item *Item) int32 {
	base := int32(0)
	if t.ground != nil {
		if t.ground == item {
			return 0
		}
		base = 1
	}
	if i := slices.Index(t.topItems, item); i >= 0 {
		return base + int32(i)
	}
	base += int32(len(t.topItems) + t.creatures)
	if i := slices.Index(t.downItems, item); i >= 0 {
		return base + int32(i)
	}
	return -1
}

// ItemTypeCount implements Holder.
func (t *Tile) ItemTypeCount(itemID int32, subType int32) uint32 {
	var n uint32
	for _, it := range t.Items() {
		if it.ItemID() == itemID && (subType == -1 || subType == it.SubType()) {
			n += it.Count()
		}
	}
	return n
}

func (t *Tile) blocksSolid(except *Item) bool {
	for _, it := range t.Items() {
		if it != except && it.template.BlockSolid {
			return true
		}
	}
	return false
}

// QueryAdd implements Holder.
func (t *Tile) QueryAdd(index int32, item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	// Контейнер на полу не ограничивает содержимое.
	if flags.Has(FlagChildIsOwner) || flags.Has(FlagNoLimit) {
		return RetOK
	}
	if item.template.IsGround() {
		return RetOK
	}
	if t.ground == nil {
		return RetNotPossible
	}
	n := t.ItemCount()
	if flags.Has(FlagReplacing) && n > 0 {
		n--
	}
	if t.maxItems > 0 && n >= t.maxItems {
		return RetNotEnoughRoom
	}
	if !flags.Has(FlagIgnoreBlockItem) && t.blocksSolid(item) && !item.template.AlwaysOnTop {
		return RetNotEnoughRoom
	}
	if !flags.Has(FlagIgnoreBlockCreature) && item.template.BlockSolid && t.creatures > 0 {
		return RetNotEnoughRoom
	}
	return RetOK
}

// QueryMaxCount implements Holder.
func (t *Tile) QueryMaxCount(index int32, item *Item, count uint32, flags Flags) (ReturnValue, uint32) {
	return RetOK, max(1, count)
}

// QueryRemove implements Holder.
func (t *Tile) QueryRemove(item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	if t.ThingIndex(item) == -1 {
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
// Trash на tile поглощает всё, mailbox забирает письма с известным адресатом.
func (t *Tile) QueryDestination(index int32, item *Item, flags Flags) (Holder, int32, *Item) {
	for _, it := range t.Items() {
		if it == item {
			continue
		}
		switch b := it.body.(type) {
		case *TrashHolder:
			return b, IndexWherever, nil
		case *Mailbox:
			if locker, ok := b.resolve(item); ok {
				return locker, IndexWherever, nil
			}
		}
	}

	destItem := t.TopDownItem()
	if destItem == item {
		destItem = nil
	}
	return t, index, destItem
}

// AddThing implements Holder.
func (t *Tile) AddThing(index int32, item *Item) {
	item.setHolder(t)
	tmpl := item.template
	switch {
	case tmpl.IsGround():
		if t.ground != nil {
			slog.Warn("ground replaced without removal",
				"tile", t.String(),
				"old", t.ground.String(),
				"new", item.String())
			t.ground.setHolder(nil)
		}
		t.ground = item
	case tmpl.AlwaysOnTop:
		pos := len(t.topItems)
		for i, it := range t.topItems {
			if tmpl.TopOrder < it.template.TopOrder {
				pos = i
				break
			}
		}
		t.topItems = slices.Insert(t.topItems, pos, item)
	default:
		t.downItems = slices.Insert(t.downItems, 0, item)
	}
}

// UpdateThing implements Holder.
func (t *Tile) UpdateThing(item *Item, template *ItemTemplate, count uint32) {
	if t.ThingIndex(item) == -1 {
		slog.Error("tile update of foreign item", "tile", t.String(), "item", item.String())
		return
	}
	item.update(template, count)
}

// ReplaceThing implements Holder.
func (t *Tile) ReplaceThing(index int32, item *Item) {
	old := t.ThingAt(index)
	if old == nil {
		slog.Error("tile replace of empty index", "tile", t.String(), "index", index)
		return
	}
	switch {
	case old == t.ground:
		t.ground = item
	default:
		if i := slices.Index(t.topItems, old); i >= 0 {
			t.topItems[i] = item
		} else if i := slices.Index(t.downItems, old); i >= 0 {
			t.downItems[i] = item
		}
	}
	item.setHolder(t)
	old.setHolder(nil)
}

// RemoveThing implements Holder.
func (t *Tile) RemoveThing(item *Item, count uint32) {
	if item.IsStackable() && count < item.Count() && t.ThingIndex(item) != -1 {
		item.count -= uint16(count)
		return
	}
	switch {
	case item == t.ground:
		t.ground = nil
	default:
		if i := slices.Index(t.topItems, item); i >= 0 {
			t.topItems = slices.Delete(t.topItems, i, i+1)
		} else if i := slices.Index(t.downItems, item); i >= 0 {
			t.downItems = slices.Delete(t.downItems, i, i+1)
		} else {
			slog.Error("tile remove of foreign item", "tile", t.String(), "item", item.String())
			return
		}
	}
	item.setHolder(nil)
}

// PostAddNotification implements Holder.
func (t *Tile) PostAddNotification(item *Item, oldParent Holder, index int32, link Link) {}

// PostRemoveNotification implements Holder.
func (t *Tile) PostRemoveNotification(item *Item, newParent Holder, index int32, link Link) {}
