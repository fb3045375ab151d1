package model

import (
	"fmt"
	"time"
)

// DecayState — состояние предмета относительно decay scheduler'а.
type DecayState uint8

const (
	DecayOff     DecayState = iota // не зарегистрирован
	DecayPending                   // ждёт раскладки в bucket в конце тика
	DecayActive                    // лежит в bucket'е
	DecayRemoved                   // предмет уничтожен
)

// String returns human-readable decay state.
func (s DecayState) String() string {
	switch s {
	case DecayOff:
		return "Off"
	case DecayPending:
		return "Pending"
	case DecayActive:
		return "Active"
	case DecayRemoved:
		return "Removed"
	default:
		return "Unknown"
	}
}

// Item представляет конкретный экземпляр предмета.
// Живёт ровно в одном holder'е (или ни в одном, если удалён/ещё не размещён).
//
// count хранит одно из трёх значений в зависимости от шаблона:
// размер стака (Stackable), charges (HasCharges) или fluid sub-type (GroupFluid).
//
// Item не потокобезопасен: все мутации идут из одного simulation loop.
type Item struct {
	serial   uint32 // Уникальный ID в процессе (логи, persistence)
	template *ItemTemplate
	count    uint16
	attrs    *Attributes

	holder Holder // non-owning back-reference
	body   Holder // non-nil для container/depot/mailbox/trash

	refs      int32
	destroyed bool
}

// NewItem создаёт экземпляр с дефолтами из шаблона.
// Вызывается только фабрикой каталога (data.Catalog.CreateItem).
//
// Parameters:
//   - serial: unique ID экземпляра
//   - template: шаблон (не nil, не пустой)
//   - count: размер стака / charges / fluid sub-type (0 = дефолт шаблона)
func NewItem(serial uint32, template *ItemTemplate, count uint16) (*Item, error) {
	if template.IsEmpty() {
		return nil, fmt.Errorf("cannot create item from empty template")
	}

	item := &Item{
		serial:   serial,
		template: template,
		refs:     1,
	}

	switch {
	case template.Stackable:
		item.count = min(max(count, 1), MaxStackCount)
	case template.HasCharges:
		if count == 0 {
			count = template.Charges
		}
		item.count = count
	case template.IsFluid():
		item.count = count
	default:
		item.count = 1
	}

	if template.DecayTime > 0 {
		item.SetDuration(template.DecayTime)
	}

	switch template.Group {
	case GroupContainer:
		item.body = newContainer(item)
	case GroupDepot:
		item.body = newDepotLocker(item)
	case GroupMailbox:
		item.body = &Mailbox{item: item}
	case GroupTrash:
		item.body = &TrashHolder{item: item}
	}

	return item, nil
}

// Serial возвращает unique ID экземпляра.
func (i *Item) Serial() uint32 {
	return i.serial
}

// ItemID возвращает template ID.
func (i *Item) ItemID() int32 {
	return i.template.ItemID
}

// Template возвращает шаблон (immutable).
func (i *Item) Template() *ItemTemplate {
	return i.template
}

// Count возвращает stack count (1 для нестакаемых предметов).
func (i *Item) Count() uint32 {
	if i.template.Stackable {
		return uint32(i.count)
	}
	return 1
}

// SubType возвращает «сырое» значение count (charges, fluid, stack).
func (i *Item) SubType() int32 {
	return int32(i.count)
}

// SetCount устанавливает размер стака с проверкой границ [1, MaxStackCount].
// Для нестакаемых предметов задаёт charges / fluid sub-type.
func (i *Item) SetCount(count uint32) error {
	if i.template.Stackable && (count < 1 || count > MaxStackCount) {
		return fmt.Errorf("stack count %d out of range [1,%d] for item %d", count, MaxStackCount, i.serial)
	}
	if count > 0xFFFF {
		return fmt.Errorf("count %d overflows sub-type for item %d", count, i.serial)
	}
	i.count = uint16(count)
	return nil
}

// update меняет шаблон и count на месте. Вызывается только holder'ом из UpdateThing.
func (i *Item) update(template *ItemTemplate, count uint32) {
	if template != nil && template != i.template {
		if template.Group != i.template.Group && (i.body != nil || template.IsContainer()) {
			// смена группы holder-предмета идёт через ReplaceThing
			return
		}
		i.template = template
	}
	switch {
	case i.template.Stackable:
		i.count = uint16(min(max(count, 1), MaxStackCount))
	case i.template.HasCharges, i.template.IsFluid():
		i.count = uint16(count)
	default:
		i.count = 1
	}
}

// IsStackable returns true if the item merges with equal items.
func (i *Item) IsStackable() bool {
	return i.template.Stackable
}

// Name возвращает имя (override из атрибутов или из шаблона).
func (i *Item) Name() string {
	if s, ok := i.attrs.Str(AttrName); ok {
		return s
	}
	return i.template.Name
}

// Weight возвращает вес с учётом стака и содержимого контейнера.
func (i *Item) Weight() int32 {
	w := i.template.Weight
	if i.template.Stackable {
		w *= int32(i.count)
	}
	if c := i.Container(); c != nil {
		w += c.totalWeight
	}
	return w
}

// Worth возвращает стоимость всего стака в базовой валюте.
func (i *Item) Worth() uint64 {
	return i.template.Worth * uint64(i.Count())
}

// Holder возвращает текущего владельца (nil если предмет нигде не лежит).
func (i *Item) Holder() Holder {
	return i.holder
}

func (i *Item) setHolder(h Holder) {
	i.holder = h
}

// TopHolder поднимается по цепочке holder'ов до корня.
func (i *Item) TopHolder() Holder {
	h := i.holder
	for h != nil {
		p := h.Parent()
		if p == nil {
			return h
		}
		h = p
	}
	return nil
}

// IsRemoved returns true if the item is not reachable from any live holder.
func (i *Item) IsRemoved() bool {
	return i.holder == nil || i.holder.IsRemoved()
}

// IsDestroyed returns true once the item was finalized by cleanup.
func (i *Item) IsDestroyed() bool {
	return i.destroyed
}

// AsHolder возвращает holder, которым является сам предмет (container, mailbox…).
func (i *Item) AsHolder() Holder {
	return i.body
}

// Container возвращает контейнерную часть предмета (nil если не контейнер).
func (i *Item) Container() *Container {
	switch b := i.body.(type) {
	case *Container:
		return b
	case *DepotLocker:
		return b.Container
	default:
		return nil
	}
}

// DepotLocker возвращает depot-часть предмета (nil если не depot).
func (i *Item) DepotLocker() *DepotLocker {
	d, _ := i.body.(*DepotLocker)
	return d
}

// Mailbox возвращает mailbox-часть предмета.
func (i *Item) Mailbox() *Mailbox {
	m, _ := i.body.(*Mailbox)
	return m
}

// Equals returns true if items can merge into one stack.
func (i *Item) Equals(other *Item) bool {
	if other == nil || i.template != other.template {
		return false
	}
	return i.attrs.equalForStacking(other.attrs)
}

// Attributes возвращает блок атрибутов (может быть nil).
func (i *Item) Attributes() *Attributes {
	return i.attrs
}

func (i *Item) mutableAttrs() *Attributes {
	if i.attrs == nil {
		i.attrs = &Attributes{}
	}
	return i.attrs
}

// SetAttributes заменяет блок атрибутов целиком (используется при загрузке).
func (i *Item) SetAttributes(a *Attributes) {
	if a.Empty() {
		i.attrs = nil
		return
	}
	i.attrs = a
}

// SetIntAttr устанавливает целочисленный атрибут.
func (i *Item) SetIntAttr(key AttrKey, v int64) {
	i.mutableAttrs().SetInt(key, v)
}

// SetStrAttr устанавливает строковый атрибут.
func (i *Item) SetStrAttr(key AttrKey, v string) {
	i.mutableAttrs().SetStr(key, v)
}

// RemoveAttr удаляет атрибут; пустой блок освобождается.
func (i *Item) RemoveAttr(key AttrKey) {
	i.attrs.Remove(key)
	if i.attrs.Empty() {
		i.attrs = nil
	}
}

// Text возвращает текст (письма, label посылки).
func (i *Item) Text() string {
	s, _ := i.attrs.Str(AttrText)
	return s
}

// SetText устанавливает текст.
func (i *Item) SetText(text string) {
	if text == "" {
		i.RemoveAttr(AttrText)
		return
	}
	i.SetStrAttr(AttrText, text)
}

// UniqueID возвращает unique ID (0 = нет). Предметы с unique ID не портятся.
func (i *Item) UniqueID() int64 {
	v, _ := i.attrs.Int(AttrUniqueID)
	return v
}

// SetUniqueID устанавливает unique ID.
func (i *Item) SetUniqueID(id int64) {
	if id == 0 {
		i.RemoveAttr(AttrUniqueID)
		return
	}
	i.SetIntAttr(AttrUniqueID, id)
}

// ActionID возвращает action ID для scripting.
func (i *Item) ActionID() int64 {
	v, _ := i.attrs.Int(AttrActionID)
	return v
}

// Duration возвращает оставшееся время жизни.
func (i *Item) Duration() time.Duration {
	v, _ := i.attrs.Int(AttrDuration)
	return time.Duration(v) * time.Millisecond
}

// SetDuration устанавливает оставшееся время жизни (0 удаляет атрибут).
func (i *Item) SetDuration(d time.Duration) {
	if d <= 0 {
		i.RemoveAttr(AttrDuration)
		return
	}
	i.SetIntAttr(AttrDuration, d.Milliseconds())
}

// DecayState возвращает состояние decay.
func (i *Item) DecayState() DecayState {
	if i.destroyed {
		return DecayRemoved
	}
	v, _ := i.attrs.Int(AttrDecayState)
	return DecayState(v)
}

// SetDecayState устанавливает состояние decay.
func (i *Item) SetDecayState(s DecayState) {
	if s == DecayOff {
		i.RemoveAttr(AttrDecayState)
		return
	}
	i.SetIntAttr(AttrDecayState, int64(s))
}

// CanDecay returns true if the item has time left and is not pinned by a unique ID.
func (i *Item) CanDecay() bool {
	return !i.destroyed && i.Duration() > 0 && i.UniqueID() == 0
}

// Refs возвращает текущий счётчик ссылок.
func (i *Item) Refs() int32 {
	return i.refs
}

// IncRef увеличивает счётчик ссылок.
func (i *Item) IncRef() {
	i.refs++
}

// DecRef уменьшает счётчик ссылок и возвращает новое значение.
func (i *Item) DecRef() int32 {
	if i.refs > 0 {
		i.refs--
	}
	return i.refs
}

// Destroy финализирует предмет после того как счётчик ссылок дошёл до нуля.
// Предмет, всё ещё привязанный к holder'у, не уничтожается.
func (i *Item) Destroy() error {
	if i.holder != nil {
		return fmt.Errorf("item %d (type %d) is still linked to %s", i.serial, i.ItemID(), i.holder)
	}
	if i.refs > 0 {
		return fmt.Errorf("item %d (type %d) still has %d references", i.serial, i.ItemID(), i.refs)
	}
	i.destroyed = true
	i.attrs = nil
	return nil
}

// Clone создаёт копию с тем же типом, count и атрибутами, без holder'а
// и с собственным счётчиком ссылок. Содержимое контейнеров копируется рекурсивно.
func (i *Item) Clone(nextSerial func() uint32) *Item {
	clone := &Item{
		serial:   nextSerial(),
		template: i.template,
		count:    i.count,
		attrs:    i.attrs.Clone(),
		refs:     1,
	}
	clone.RemoveAttr(AttrDecayState)

	switch b := i.body.(type) {
	case *Container:
		c := newContainer(clone)
		b.cloneInto(c, nextSerial)
		clone.body = c
	case *DepotLocker:
		d := newDepotLocker(clone)
		b.Container.cloneInto(d.Container, nextSerial)
		clone.body = d
	case *Mailbox:
		clone.body = &Mailbox{item: clone, office: b.office}
	case *TrashHolder:
		clone.body = &TrashHolder{item: clone, onBurn: b.onBurn}
	}
	return clone
}

// String implements fmt.Stringer for logs.
func (i *Item) String() string {
	return fmt.Sprintf("item#%d(%d %q x%d)", i.serial, i.ItemID(), i.template.Name, i.count)
}
