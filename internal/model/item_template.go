package model

import "time"

// MaxStackCount — максимальное количество единиц в одном стаке.
const MaxStackCount = 100

// ItemTemplate описывает тип предмета из каталога.
// Immutable после загрузки, шарится между всеми экземплярами одного типа.
// ItemID == 0 означает «нет предмета».
type ItemTemplate struct {
	ItemID   int32  // Server-side type ID (0 = none)
	ClientID int32  // ID в пространстве клиента
	Name     string // e.g. "Gold Coin", "Backpack"
	Type     ItemType
	Group    ItemGroup

	// Common stats
	Weight     int32  // Вес одной единицы
	Stackable  bool   // Можно складывать в стак (coins, arrows)
	HasCharges bool   // count означает charges (runes, potions)
	Charges    uint16 // Начальные charges
	Capacity   int32  // Количество слотов (только для контейнеров)
	Worth      uint64 // Стоимость единицы в базовой валюте (0 = не деньги)

	// Decay
	DecayTo   int32         // Во что превращается (0 = исчезает)
	DecayTime time.Duration // Начальная длительность (0 = не портится)

	// Equipment
	SlotMask  SlotMask // В какие слоты экипировки можно надеть
	TwoHanded bool     // Занимает обе руки

	// Map
	AlwaysOnTop bool
	TopOrder    int32
	BlockSolid  bool
	BlockPath   bool
	Moveable    bool
	Pickupable  bool
	Mailable    bool // Можно отправить через mailbox (parcel, letter)
}

// emptyTemplate — sentinel для неизвестных ID.
var emptyTemplate = &ItemTemplate{Name: "none"}

// EmptyTemplate возвращает sentinel шаблон для ID, отсутствующих в каталоге.
func EmptyTemplate() *ItemTemplate {
	return emptyTemplate
}

// ItemType определяет категорию предмета.
type ItemType int32

const (
	ItemTypeEtcItem ItemType = iota
	ItemTypeWeapon
	ItemTypeArmor
	ItemTypeAmmo
	ItemTypeConsumable
	ItemTypeCurrency
	ItemTypeContainer
)

// String returns human-readable item type name.
func (it ItemType) String() string {
	switch it {
	case ItemTypeEtcItem:
		return "EtcItem"
	case ItemTypeWeapon:
		return "Weapon"
	case ItemTypeArmor:
		return "Armor"
	case ItemTypeAmmo:
		return "Ammo"
	case ItemTypeConsumable:
		return "Consumable"
	case ItemTypeCurrency:
		return "Currency"
	case ItemTypeContainer:
		return "Container"
	default:
		return "Unknown"
	}
}

// ParseItemType converts catalog string to ItemType.
func ParseItemType(s string) (ItemType, bool) {
	for t := ItemTypeEtcItem; t <= ItemTypeContainer; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return ItemTypeEtcItem, false
}

// ItemGroup определяет, является ли предмет holder'ом и каким именно.
type ItemGroup int32

const (
	GroupNone ItemGroup = iota
	GroupGround
	GroupContainer
	GroupDepot
	GroupMailbox
	GroupTrash
	GroupFluid
)

// String returns human-readable item group name.
func (g ItemGroup) String() string {
	switch g {
	case GroupNone:
		return "None"
	case GroupGround:
		return "Ground"
	case GroupContainer:
		return "Container"
	case GroupDepot:
		return "Depot"
	case GroupMailbox:
		return "Mailbox"
	case GroupTrash:
		return "Trash"
	case GroupFluid:
		return "Fluid"
	default:
		return "Unknown"
	}
}

// ParseItemGroup converts catalog string to ItemGroup.
func ParseItemGroup(s string) (ItemGroup, bool) {
	for g := GroupNone; g <= GroupFluid; g++ {
		if g.String() == s {
			return g, true
		}
	}
	return GroupNone, false
}

// IsEmpty returns true for the sentinel "no item" template.
func (t *ItemTemplate) IsEmpty() bool {
	return t == nil || t.ItemID == 0
}

// IsContainer returns true if items of this type hold other items in slots.
func (t *ItemTemplate) IsContainer() bool {
	return t.Group == GroupContainer || t.Group == GroupDepot
}

// IsGround returns true for floor tiles.
func (t *ItemTemplate) IsGround() bool {
	return t.Group == GroupGround
}

// IsFluid returns true if count carries a fluid sub-type.
func (t *ItemTemplate) IsFluid() bool {
	return t.Group == GroupFluid
}

// IsMoney returns true if the item has currency value.
func (t *ItemTemplate) IsMoney() bool {
	return t.Worth > 0
}

// Decays returns true if freshly created items start with a duration.
func (t *ItemTemplate) Decays() bool {
	return t.DecayTime > 0
}
