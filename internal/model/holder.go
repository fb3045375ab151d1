package model

import "fmt"

// Специальные индексы holder'а.
const (
	// IndexWherever — «положи куда сочтёшь нужным».
	IndexWherever int32 = -1
	// IndexParent — «на уровень выше» (контейнер → родительский контейнер).
	IndexParent int32 = -2
)

// Flags модифицируют проверки holder'а.
type Flags uint32

const (
	FlagNoLimit Flags = 1 << iota
	FlagIgnoreBlockItem
	FlagIgnoreBlockCreature
	FlagChildIsOwner
	FlagIgnoreNotMoveable
	FlagIgnoreAutoStack
	// FlagReplacing: предмет в слоте index уходит в той же операции (exchange),
	// его занятость и вес не учитываются.
	FlagReplacing
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Link описывает отношение holder'а, получающего notification, к изменённому предмету.
type Link uint8

const (
	LinkOwner     Link = iota // предмет лежит прямо в этом holder'е
	LinkParent                // предмет лежит во вложенном контейнере
	LinkTopParent             // notification дошло до корня цепочки
	LinkNear                  // соседний holder (tile рядом)
)

// ReturnValue описывает результат проверки или операции. Policy-исходы возвращаются значениями, не ошибками.
type ReturnValue int32

const (
	RetOK ReturnValue = iota
	RetNotPossible
	RetNotEnoughRoom
	RetNotEnoughCapacity
	RetContainerNotEnoughRoom
	RetCannotPickup
	RetNotMoveable
	RetNeedExchange
	RetThisIsImpossible
	RetCannotBeDressed
	RetPutThisObjectInYourHand
	RetBothHandsNeedToBeFree
	RetDropTwoHandedItem
	RetDepotIsFull
	RetDestinationOutOfReach
	RetNotEnoughMoney
)

var returnValueNames = [...]string{
	RetOK:                      "OK",
	RetNotPossible:             "NotPossible",
	RetNotEnoughRoom:           "NotEnoughRoom",
	RetNotEnoughCapacity:       "NotEnoughCapacity",
	RetContainerNotEnoughRoom:  "ContainerNotEnoughRoom",
	RetCannotPickup:            "CannotPickup",
	RetNotMoveable:             "NotMoveable",
	RetNeedExchange:            "NeedExchange",
	RetThisIsImpossible:        "ThisIsImpossible",
	RetCannotBeDressed:         "CannotBeDressed",
	RetPutThisObjectInYourHand: "PutThisObjectInYourHand",
	RetBothHandsNeedToBeFree:   "BothHandsNeedToBeFree",
	RetDropTwoHandedItem:       "DropTwoHandedItem",
	RetDepotIsFull:             "DepotIsFull",
	RetDestinationOutOfReach:   "DestinationOutOfReach",
	RetNotEnoughMoney:          "NotEnoughMoney",
}

// String returns human-readable outcome name.
func (r ReturnValue) String() string {
	if r >= 0 && int(r) < len(returnValueNames) {
		return returnValueNames[r]
	}
	return fmt.Sprintf("ReturnValue(%d)", int32(r))
}

// IsCapacity reports outcomes that mean "only part fits".
func (r ReturnValue) IsCapacity() bool {
	switch r {
	case RetNotEnoughRoom, RetNotEnoughCapacity, RetContainerNotEnoughRoom, RetDepotIsFull:
		return true
	default:
		return false
	}
}

// Actor инициирует операцию (игрок, скрипт). Может быть nil.
type Actor interface {
	Name() string
}

// Holder — единый протокол для всего, что содержит предметы:
// tile, контейнер, экипировка существа, depot, mailbox, trash.
//
// Порядок использования: Query* → мутация → Post*Notification.
// Мутации вызываются только после успешной проверки.
type Holder interface {
	fmt.Stringer

	// QueryAdd проверяет, можно ли положить count единиц item по index.
	QueryAdd(index int32, item *Item, count uint32, flags Flags, actor Actor) ReturnValue
	// QueryMaxCount возвращает, сколько единиц item реально поместится.
	QueryMaxCount(index int32, item *Item, count uint32, flags Flags) (ReturnValue, uint32)
	// QueryRemove проверяет, можно ли забрать count единиц item.
	QueryRemove(item *Item, count uint32, flags Flags, actor Actor) ReturnValue
	// QueryDestination позволяет перенаправить вставку в другой holder/index.
	// destItem: предмет по целевому индексу (кандидат на stack merge или exchange).
	QueryDestination(index int32, item *Item, flags Flags) (dest Holder, destIndex int32, destItem *Item)

	// AddThing кладёт предмет целиком.
	AddThing(index int32, item *Item)
	// UpdateThing меняет шаблон и/или count предмета на месте.
	UpdateThing(item *Item, template *ItemTemplate, count uint32)
	// ReplaceThing заменяет предмет по index другим.
	ReplaceThing(index int32, item *Item)
	// RemoveThing забирает count единиц (весь предмет, если count >= Count()).
	RemoveThing(item *Item, count uint32)

	PostAddNotification(item *Item, oldParent Holder, index int32, link Link)
	PostRemoveNotification(item *Item, newParent Holder, index int32, link Link)

	Parent() Holder
	IsRemoved() bool
	ThingIndex(item *Item) int32
	ThingAt(index int32) *Item
	FirstIndex() int32
	LastIndex() int32
	ItemTypeCount(itemID int32, subType int32) uint32
}

// weightTracker реализуется holder'ами, которые пересчитывают вес содержимого.
type weightTracker interface {
	updateItemWeight(diff int32)
}
