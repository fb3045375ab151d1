package model

// Paperdoll slots существа. Индекс 0 не используется, чтобы совпадать
// с индексацией holder'а (index == slot).
const (
	PaperdollHead       int32 = 1
	PaperdollNecklace   int32 = 2
	PaperdollBackpack   int32 = 3
	PaperdollArmor      int32 = 4
	PaperdollRight      int32 = 5 // Right hand (weapon)
	PaperdollLeft       int32 = 6 // Left hand (shield)
	PaperdollLegs       int32 = 7
	PaperdollFeet       int32 = 8
	PaperdollRing       int32 = 9
	PaperdollAmmo       int32 = 10
	PaperdollFirst            = PaperdollHead
	PaperdollLast             = PaperdollAmmo
	PaperdollTotalSlots       = PaperdollLast + 1
)

// SlotMask — битовая маска слотов, в которые можно надеть предмет.
type SlotMask uint16

const (
	SlotMaskHead SlotMask = 1 << iota
	SlotMaskNecklace
	SlotMaskBackpack
	SlotMaskArmor
	SlotMaskRight
	SlotMaskLeft
	SlotMaskLegs
	SlotMaskFeet
	SlotMaskRing
	SlotMaskAmmo

	SlotMaskHand = SlotMaskRight | SlotMaskLeft
)

// SlotMaskOf returns the mask bit for a paperdoll slot (0 for invalid slots).
func SlotMaskOf(slot int32) SlotMask {
	if slot < PaperdollFirst || slot > PaperdollLast {
		return 0
	}
	return 1 << (slot - PaperdollFirst)
}

// Has returns true if the mask allows the given paperdoll slot.
func (m SlotMask) Has(slot int32) bool {
	bit := SlotMaskOf(slot)
	return bit != 0 && m&bit != 0
}

var slotNames = map[string]SlotMask{
	"head":     SlotMaskHead,
	"necklace": SlotMaskNecklace,
	"backpack": SlotMaskBackpack,
	"armor":    SlotMaskArmor,
	"right":    SlotMaskRight,
	"left":     SlotMaskLeft,
	"hand":     SlotMaskHand,
	"legs":     SlotMaskLegs,
	"feet":     SlotMaskFeet,
	"ring":     SlotMaskRing,
	"ammo":     SlotMaskAmmo,
}

// ParseSlotMask combines named slots ("head", "hand", ...) into a mask.
// Unknown names are returned separately so the loader can report them.
func ParseSlotMask(names []string) (SlotMask, []string) {
	var (
		mask    SlotMask
		unknown []string
	)
	for _, n := range names {
		bit, ok := slotNames[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		mask |= bit
	}
	return mask, unknown
}
