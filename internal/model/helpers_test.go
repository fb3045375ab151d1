package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	tmplGold = &ItemTemplate{ItemID: 2148, Name: "gold coin", Type: ItemTypeCurrency,
		Weight: 10, Stackable: true, Worth: 1, Moveable: true, Pickupable: true}
	tmplArrow = &ItemTemplate{ItemID: 2544, Name: "arrow", Type: ItemTypeAmmo,
		Weight: 7, Stackable: true, SlotMask: SlotMaskAmmo, Moveable: true, Pickupable: true}
	tmplSword = &ItemTemplate{ItemID: 2376, Name: "sword", Type: ItemTypeWeapon,
		Weight: 3500, SlotMask: SlotMaskHand, Moveable: true, Pickupable: true}
	tmplAxe = &ItemTemplate{ItemID: 2432, Name: "fire axe", Type: ItemTypeWeapon,
		Weight: 4000, SlotMask: SlotMaskHand, TwoHanded: true, Moveable: true, Pickupable: true}
	tmplShield = &ItemTemplate{ItemID: 2509, Name: "steel shield", Type: ItemTypeArmor,
		Weight: 6900, SlotMask: SlotMaskHand, Moveable: true, Pickupable: true}
	tmplHelmet = &ItemTemplate{ItemID: 2457, Name: "steel helmet", Type: ItemTypeArmor,
		Weight: 4600, SlotMask: SlotMaskHead, Moveable: true, Pickupable: true}
	tmplBag = &ItemTemplate{ItemID: 1987, Name: "bag", Type: ItemTypeContainer, Group: GroupContainer,
		Weight: 800, Capacity: 8, SlotMask: SlotMaskBackpack, Moveable: true, Pickupable: true}
	tmplPouch = &ItemTemplate{ItemID: 1993, Name: "pouch", Type: ItemTypeContainer, Group: GroupContainer,
		Weight: 100, Capacity: 1, Moveable: true, Pickupable: true}
	tmplDepot = &ItemTemplate{ItemID: 2594, Name: "depot chest", Type: ItemTypeContainer, Group: GroupDepot,
		Capacity: 30}
	tmplMailbox = &ItemTemplate{ItemID: 2593, Name: "mailbox", Group: GroupMailbox, BlockSolid: true}
	tmplTrash   = &ItemTemplate{ItemID: 1777, Name: "dustbin", Group: GroupTrash}
	tmplLetter  = &ItemTemplate{ItemID: 2597, Name: "letter", Weight: 50, Mailable: true,
		Moveable: true, Pickupable: true}
	tmplParcel = &ItemTemplate{ItemID: 2595, Name: "parcel", Type: ItemTypeContainer, Group: GroupContainer,
		Weight: 1800, Capacity: 10, Mailable: true, Moveable: true, Pickupable: true}
	tmplLabel = &ItemTemplate{ItemID: 2599, Name: "label", Weight: 10, Moveable: true, Pickupable: true}
	tmplGrass = &ItemTemplate{ItemID: 4526, Name: "grass", Group: GroupGround}
	tmplWall  = &ItemTemplate{ItemID: 1026, Name: "wall", BlockSolid: true}
	tmplTorch = &ItemTemplate{ItemID: 2050, Name: "torch", Weight: 500, DecayTo: 2051,
		DecayTime: 10 * time.Minute, Moveable: true, Pickupable: true}
	tmplStatue = &ItemTemplate{ItemID: 1444, Name: "statue", Weight: 100000}
)

type testSerials struct{ next uint32 }

func (s *testSerials) Next() uint32 {
	s.next++
	return s.next
}

func newTestItem(t *testing.T, serials *testSerials, tmpl *ItemTemplate, count uint16) *Item {
	t.Helper()
	item, err := NewItem(serials.Next(), tmpl, count)
	require.NoError(t, err)
	return item
}

// newGroundTile создаёт tile с травой.
func newGroundTile(t *testing.T, serials *testSerials) *Tile {
	t.Helper()
	tile := NewTile(NewLocation(100, 100, 7), 0)
	tile.AddThing(IndexWherever, newTestItem(t, serials, tmplGrass, 0))
	return tile
}
