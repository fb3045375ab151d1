package model

import (
	"fmt"
	"log/slog"
	"strings"
)

// PostOffice разрешает адресата посылки в его depot.
type PostOffice interface {
	LockerFor(name string) (*DepotLocker, bool)
}

// Mailbox — holder-перенаправитель: письмо или посылка, брошенные в mailbox,
// уходят в depot адресата. Сам mailbox ничего не хранит.
type Mailbox struct {
	item   *Item
	office PostOffice
}

// SetPostOffice подключает резолвер адресатов.
func (m *Mailbox) SetPostOffice(office PostOffice) {
	m.office = office
}

// Item возвращает предмет-mailbox.
func (m *Mailbox) Item() *Item {
	return m.item
}

// String implements fmt.Stringer.
func (m *Mailbox) String() string {
	return fmt.Sprintf("mailbox#%d", m.item.serial)
}

// Addressee извлекает имя получателя: первая строка текста письма,
// для посылки — первая строка первого вложения с текстом (label).
func Addressee(item *Item) string {
	text := item.Text()
	if text == "" {
		if c := item.Container(); c != nil {
			for _, it := range c.items {
				if t := it.Text(); t != "" {
					text = t
					break
				}
			}
		}
	}
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}

func (m *Mailbox) resolve(item *Item) (*DepotLocker, bool) {
	if m.office == nil || !item.template.Mailable {
		return nil, false
	}
	name := Addressee(item)
	if name == "" {
		return nil, false
	}
	return m.office.LockerFor(name)
}

// QueryDestination перенаправляет почту в depot адресата.
func (m *Mailbox) QueryDestination(index int32, item *Item, flags Flags) (Holder, int32, *Item) {
	if locker, ok := m.resolve(item); ok {
		return locker, IndexWherever, nil
	}
	return m, index, nil
}

// QueryAdd implements Holder. Mailbox не принимает предметы напрямую.
func (m *Mailbox) QueryAdd(index int32, item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	return RetNotPossible
}

// QueryMaxCount implements Holder.
func (m *Mailbox) QueryMaxCount(index int32, item *Item, count uint32, flags Flags) (ReturnValue, uint32) {
	return RetOK, count
}

// QueryRemove implements Holder.
func (m *Mailbox) QueryRemove(item *Item, count uint32, flags Flags, actor Actor) ReturnValue {
	return RetNotPossible
}

// AddThing implements Holder.
func (m *Mailbox) AddThing(index int32, item *Item) {
	slog.Error("item added directly to mailbox", "mailbox", m.String(), "item", item.String())
}

// UpdateThing implements Holder.
func (m *Mailbox) UpdateThing(item *Item, template *ItemTemplate, count uint32) {}

// ReplaceThing implements Holder.
func (m *Mailbox) ReplaceThing(index int32, item *Item) {}

// RemoveThing implements Holder.
func (m *Mailbox) RemoveThing(item *Item, count uint32) {}

// PostAddNotification implements Holder.
func (m *Mailbox) PostAddNotification(item *Item, oldParent Holder, index int32, link Link) {}

// PostRemoveNotification implements Holder.
func (m *Mailbox) PostRemoveNotification(item *Item, newParent Holder, index int32, link Link) {}

// Parent implements Holder.
func (m *Mailbox) Parent() Holder { return m.item.holder }

// IsRemoved implements Holder.
func (m *Mailbox) IsRemoved() bool { return m.item.IsRemoved() }

// ThingIndex implements Holder.
func (m *Mailbox) ThingIndex(item *Item) int32 { return -1 }

// ThingAt implements Holder.
func (m *Mailbox) ThingAt(index int32) *Item { return nil }

// FirstIndex implements Holder.
func (m *Mailbox) FirstIndex() int32 { return 0 }

// LastIndex implements Holder.
func (m *Mailbox) LastIndex() int32 { return 0 }

// ItemTypeCount implements Holder.
func (m *Mailbox) ItemTypeCount(itemID int32, subType int32) uint32 { return 0 }
