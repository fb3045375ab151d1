package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/itemcore/internal/data"
	"github.com/udisondev/itemcore/internal/game/decay"
	"github.com/udisondev/itemcore/internal/model"
	"github.com/udisondev/itemcore/internal/testutil"
)

const (
	idGold     int32 = 2148
	idPlatinum int32 = 2152
	idCrystal  int32 = 2160
	idBag      int32 = 1987
	idBackpack int32 = 1988
	idPouch    int32 = 1993
	idDustbin  int32 = 1777
	idMailbox  int32 = 2593
	idDepot    int32 = 2594
	idLetter   int32 = 2597
	idGrass    int32 = 4526
	idWall     int32 = 1026
	idSword    int32 = 2376
	idShield   int32 = 2509
	idArrow    int32 = 2544
	idCandle   int32 = 300
	idStub     int32 = 301
	idAsh      int32 = 302
	idDeadRat  int32 = 2813
	idRemains  int32 = 2814
)

const testCatalogYAML = `
items:
  - {id: 2148, name: gold coin, type: Currency, weight: 10, stackable: true, worth: 1, moveable: true, pickupable: true}
  - {id: 2152, name: platinum coin, type: Currency, weight: 10, stackable: true, worth: 100, moveable: true, pickupable: true}
  - {id: 2160, name: crystal coin, type: Currency, weight: 10, stackable: true, worth: 10000, moveable: true, pickupable: true}
  - {id: 1987, name: bag, type: Container, group: Container, weight: 800, capacity: 8, slots: [backpack], moveable: true, pickupable: true}
  - {id: 1988, name: backpack, type: Container, group: Container, weight: 1800, capacity: 20, slots: [backpack], moveable: true, pickupable: true}
  - {id: 1993, name: pouch, type: Container, group: Container, weight: 100, capacity: 1, moveable: true, pickupable: true}
  - {id: 1777, name: dustbin, group: Trash, alwaysOnTop: true, topOrder: 3}
  - {id: 2593, name: mailbox, group: Mailbox, blockSolid: true}
  - {id: 2594, name: depot chest, type: Container, group: Depot, capacity: 30}
  - {id: 2597, name: letter, weight: 50, moveable: true, pickupable: true, mailable: true}
  - {id: 4526, name: grass, group: Ground}
  - {id: 1026, name: stone wall, blockSolid: true, alwaysOnTop: true, topOrder: 2}
  - {id: 2376, name: sword, type: Weapon, weight: 3500, slots: [hand], moveable: true, pickupable: true}
  - {id: 2509, name: steel shield, type: Armor, weight: 6900, slots: [hand], moveable: true, pickupable: true}
  - {id: 2544, name: arrow, type: Ammo, weight: 7, stackable: true, slots: [ammo], moveable: true, pickupable: true}
  - {id: 300, name: candle, weight: 20, decayTo: 301, decayTimeMs: 2500, moveable: true, pickupable: true}
  - {id: 301, name: candle stub, weight: 5, moveable: true, pickupable: true}
  - {id: 302, name: ash, decayTimeMs: 1000, moveable: true}
  - {id: 2813, name: dead rat, type: Container, group: Container, weight: 6300, capacity: 5, decayTo: 2814, decayTimeMs: 1000, moveable: true}
  - {id: 2814, name: remains of a rat, moveable: true}
`

func newTestCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	return testutil.MustParseCatalog(t, testCatalogYAML)
}

// newTestEngine собирает Engine с кольцом 2 x 1s.
func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	return newEngineWithCatalog(t, newTestCatalog(t), opts)
}

func newEngineWithCatalog(t *testing.T, c *data.Catalog, opts Options) *Engine {
	t.Helper()
	sched, err := decay.NewScheduler(2, time.Second)
	require.NoError(t, err)
	return NewEngine(c, sched, opts)
}

func create(t *testing.T, e *Engine, id int32, count uint16) *model.Item {
	t.Helper()
	item, err := e.CreateItem(id, count)
	require.NoError(t, err)
	return item
}

// newGroundTile создаёт tile с травой.
func newGroundTile(t *testing.T, e *Engine) *model.Tile {
	t.Helper()
	tile := model.NewTile(model.NewLocation(100, 100, 7), 0)
	require.Equal(t, model.RetOK, e.AddItem(tile, create(t, e, idGrass, 0), model.IndexWherever, 0, false))
	return tile
}

// put кладёт новый предмет в holder и проверяет результат.
func put(t *testing.T, e *Engine, h model.Holder, id int32, count uint16) *model.Item {
	t.Helper()
	item := create(t, e, id, count)
	require.Equal(t, model.RetOK, e.AddItem(h, item, model.IndexWherever, model.FlagNoLimit, false))
	return item
}

// countOf суммирует единицы типа в holder'е и вложенных контейнерах.
func countOf(h model.Holder, id int32) uint32 {
	return testutil.CountOf(h, id)
}

type event struct {
	added  bool
	holder model.Holder
	item   *model.Item
	index  int32
}

type recordingObserver struct {
	events []event
}

func (o *recordingObserver) OnItemAdded(h model.Holder, item *model.Item, index int32) {
	o.events = append(o.events, event{added: true, holder: h, item: item, index: index})
}

func (o *recordingObserver) OnItemRemoved(h model.Holder, item *model.Item, index int32) {
	o.events = append(o.events, event{holder: h, item: item, index: index})
}

type postOffice map[string]*model.DepotLocker

func (p postOffice) LockerFor(name string) (*model.DepotLocker, bool) {
	d, ok := p[name]
	return d, ok
}
