package data

// Item IDs встроенного каталога, на которые ссылается код.
const (
	ItemGoldCoin     int32 = 2148
	ItemPlatinumCoin int32 = 2152
	ItemCrystalCoin  int32 = 2160
	ItemBackpack     int32 = 1988
	ItemBag          int32 = 1987
	ItemDepotChest   int32 = 2594
	ItemMailbox      int32 = 2593
	ItemDustbin      int32 = 1777
	ItemParcel       int32 = 2595
	ItemLetter       int32 = 2597
	ItemLabel        int32 = 2599
	ItemGrass        int32 = 4526
)

// defaultItems — встроенный каталог (используется, если catalog path не задан).
var defaultItems = []itemDef{
	// Currency
	{ID: ItemGoldCoin, ClientID: 3031, Name: "gold coin", Type: "Currency", Weight: 10, Stackable: true, Worth: 1, Moveable: true, Pickupable: true},
	{ID: ItemPlatinumCoin, ClientID: 3035, Name: "platinum coin", Type: "Currency", Weight: 10, Stackable: true, Worth: 100, Moveable: true, Pickupable: true},
	{ID: ItemCrystalCoin, ClientID: 3043, Name: "crystal coin", Type: "Currency", Weight: 10, Stackable: true, Worth: 10000, Moveable: true, Pickupable: true},

	// Containers
	{ID: ItemBackpack, ClientID: 2854, Name: "backpack", Type: "Container", Group: "Container", Weight: 1800, Capacity: 20, Slots: []string{"backpack"}, Moveable: true, Pickupable: true},
	{ID: ItemBag, ClientID: 2853, Name: "bag", Type: "Container", Group: "Container", Weight: 800, Capacity: 8, Slots: []string{"backpack"}, Moveable: true, Pickupable: true},
	{ID: ItemDepotChest, ClientID: 3502, Name: "depot chest", Type: "Container", Group: "Depot", Capacity: 30},
	{ID: ItemParcel, ClientID: 3503, Name: "parcel", Type: "Container", Group: "Container", Weight: 1800, Capacity: 10, Moveable: true, Pickupable: true, Mailable: true},

	// Mail
	{ID: ItemMailbox, ClientID: 2334, Name: "mailbox", Group: "Mailbox", BlockSolid: true},
	{ID: ItemLetter, ClientID: 3505, Name: "letter", Weight: 50, Moveable: true, Pickupable: true, Mailable: true},
	{ID: ItemLabel, ClientID: 3507, Name: "label", Weight: 10, Moveable: true, Pickupable: true},

	// Map
	{ID: ItemDustbin, ClientID: 2526, Name: "dustbin", Group: "Trash", AlwaysOnTop: true, TopOrder: 3},
	{ID: ItemGrass, ClientID: 4515, Name: "grass", Group: "Ground"},
	{ID: 1026, ClientID: 1026, Name: "stone wall", BlockSolid: true, BlockPath: true, AlwaysOnTop: true, TopOrder: 2},
	{ID: 1423, ClientID: 2133, Name: "campfire", BlockSolid: true, DecayTo: 1424, DecayTimeMs: 120_000},
	{ID: 1424, ClientID: 2134, Name: "fading campfire", DecayTo: 1425, DecayTimeMs: 60_000},
	{ID: 1425, ClientID: 2135, Name: "embers", DecayTimeMs: 30_000},

	// Light
	{ID: 2050, ClientID: 2920, Name: "torch", Weight: 500, DecayTo: 2052, DecayTimeMs: 600_000, Slots: []string{"hand", "ammo"}, Moveable: true, Pickupable: true},
	{ID: 2052, ClientID: 2922, Name: "burnt torch", Weight: 300, DecayTimeMs: 300_000, Moveable: true, Pickupable: true},

	// Corpses
	{ID: 2813, ClientID: 4240, Name: "dead rat", Type: "Container", Group: "Container", Weight: 6300, Capacity: 5, DecayTo: 2814, DecayTimeMs: 300_000, Moveable: true},
	{ID: 2814, ClientID: 4241, Name: "remains of a rat", DecayTimeMs: 300_000, Moveable: true},

	// Weapons
	{ID: 2376, ClientID: 3264, Name: "sword", Type: "Weapon", Weight: 3500, Slots: []string{"hand"}, Moveable: true, Pickupable: true},
	{ID: 2432, ClientID: 3320, Name: "fire axe", Type: "Weapon", Weight: 4000, Slots: []string{"hand"}, TwoHanded: true, Moveable: true, Pickupable: true},
	{ID: 2456, ClientID: 3350, Name: "bow", Type: "Weapon", Weight: 3100, Slots: []string{"hand"}, TwoHanded: true, Moveable: true, Pickupable: true},
	{ID: 2544, ClientID: 3447, Name: "arrow", Type: "Ammo", Weight: 70, Stackable: true, Slots: []string{"ammo"}, Moveable: true, Pickupable: true},

	// Armor
	{ID: 2457, ClientID: 3351, Name: "steel helmet", Type: "Armor", Weight: 4600, Slots: []string{"head"}, Moveable: true, Pickupable: true},
	{ID: 2463, ClientID: 3357, Name: "plate armor", Type: "Armor", Weight: 12000, Slots: []string{"armor"}, Moveable: true, Pickupable: true},
	{ID: 2647, ClientID: 3557, Name: "plate legs", Type: "Armor", Weight: 5000, Slots: []string{"legs"}, Moveable: true, Pickupable: true},
	{ID: 2643, ClientID: 3552, Name: "leather boots", Type: "Armor", Weight: 900, Slots: []string{"feet"}, Moveable: true, Pickupable: true},
	{ID: 2509, ClientID: 3409, Name: "steel shield", Type: "Armor", Weight: 6900, Slots: []string{"hand"}, Moveable: true, Pickupable: true},
	{ID: 2173, ClientID: 3081, Name: "amulet of loss", Type: "Armor", Weight: 420, Slots: []string{"necklace"}, Moveable: true, Pickupable: true},
	{ID: 2168, ClientID: 3052, Name: "life ring", Type: "Armor", Weight: 80, Slots: []string{"ring"}, DecayTimeMs: 1_200_000, Moveable: true, Pickupable: true},

	// Consumables
	{ID: 2268, ClientID: 3155, Name: "sudden death rune", Type: "Consumable", Weight: 70, HasCharges: true, Charges: 3, Moveable: true, Pickupable: true},
	{ID: 2006, ClientID: 2874, Name: "vial", Type: "Consumable", Group: "Fluid", Weight: 180, Moveable: true, Pickupable: true},
	{ID: 2674, ClientID: 3585, Name: "red apple", Type: "Consumable", Weight: 150, Stackable: true, Moveable: true, Pickupable: true},
}
