// Package world держит корневые holder'ы мира: tiles, depot lockers и
// inventories игроков. Registry живёт в goroutine gameloop и не
// синхронизируется.
package world

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/udisondev/itemcore/internal/model"
	"github.com/udisondev/itemcore/internal/snapshot"
)

// Префиксы ключей holder'ов в snapshot и в БД.
const (
	KindTile      = "tile"
	KindDepot     = "depot"
	KindInventory = "inventory"
)

// ErrUnknownKey возвращается для ключа holder'а, который Registry не разбирает.
var ErrUnknownKey = errors.New("unknown holder key")

// Factory создаёт предметы (transfer.Engine или data.Catalog).
type Factory interface {
	CreateItem(itemID int32, count uint16) (*model.Item, error)
}

// Options задаёт параметры корневых holder'ов.
type Options struct {
	DepotItemID   int32 // предмет, из которого создаётся depot locker
	MaxDepotItems int   // 0 = без лимита
	TileItemLimit int   // 0 = без лимита
	InventoryCap  int32 // 0 = без лимита
}

// Registry хранит корневые holder'ы мира.
// Реализует model.PostOffice и transfer.Observer.
type Registry struct {
	factory Factory
	opts    Options

	tiles       map[model.Location]*model.Tile
	depots      map[string]*model.DepotLocker
	inventories map[string]*model.Inventory
}

// NewRegistry создаёт пустой реестр.
func NewRegistry(f Factory, opts Options) *Registry {
	return &Registry{
		factory:     f,
		opts:        opts,
		tiles:       make(map[model.Location]*model.Tile),
		depots:      make(map[string]*model.DepotLocker),
		inventories: make(map[string]*model.Inventory),
	}
}

// Tile возвращает tile по координатам, создавая пустой при первом обращении.
func (r *Registry) Tile(loc model.Location) *model.Tile {
	t, ok := r.tiles[loc]
	if !ok {
		t = model.NewTile(loc, r.opts.TileItemLimit)
		r.tiles[loc] = t
	}
	return t
}

// Depot возвращает depot locker владельца, создавая его при первом обращении.
func (r *Registry) Depot(owner string) (*model.DepotLocker, error) {
	if d, ok := r.depots[owner]; ok {
		return d, nil
	}
	item, err := r.factory.CreateItem(r.opts.DepotItemID, 0)
	if err != nil {
		return nil, fmt.Errorf("create depot for %q: %w", owner, err)
	}
	d := item.DepotLocker()
	if d == nil {
		return nil, fmt.Errorf("create depot for %q: item %d is not a depot", owner, r.opts.DepotItemID)
	}
	d.SetMaxDepotItems(r.opts.MaxDepotItems)
	r.depots[owner] = d
	return d, nil
}

// LockerFor implements model.PostOffice. Почта доходит только до уже
// существующих depot'ов.
func (r *Registry) LockerFor(name string) (*model.DepotLocker, bool) {
	d, ok := r.depots[name]
	return d, ok
}

// Inventory возвращает inventory владельца, создавая его при первом обращении.
func (r *Registry) Inventory(owner string) *model.Inventory {
	inv, ok := r.inventories[owner]
	if !ok {
		inv = model.NewInventory(owner, r.opts.InventoryCap)
		r.inventories[owner] = inv
	}
	return inv
}

// DirtyDepots возвращает владельцев depot'ов, изменённых после MarkSaved.
func (r *Registry) DirtyDepots() []string {
	var out []string
	for owner, d := range r.depots {
		if d.IsDirty() {
			out = append(out, owner)
		}
	}
	slices.Sort(out)
	return out
}

// DepotItems возвращает содержимое depot'а владельца (nil, если depot'а нет).
func (r *Registry) DepotItems(owner string) []*model.Item {
	d, ok := r.depots[owner]
	if !ok {
		return nil
	}
	return slices.Clone(d.Items())
}

// Holders возвращает все непустые корневые holder'ы по ключам snapshot'а.
func (r *Registry) Holders() map[string]model.Holder {
	out := make(map[string]model.Holder, len(r.tiles)+len(r.depots)+len(r.inventories))
	for loc, t := range r.tiles {
		if len(t.Items()) > 0 {
			out[TileKey(loc)] = t
		}
	}
	for owner, d := range r.depots {
		out[KindDepot+":"+owner] = d
	}
	for owner, inv := range r.inventories {
		if len(inv.EquippedItems()) > 0 {
			out[KindInventory+":"+owner] = inv
		}
	}
	return out
}

// Keys возвращает отсортированные ключи Holders.
func (r *Registry) Keys() []string {
	return slices.Sorted(maps.Keys(r.Holders()))
}

// TileKey формирует ключ tile'а: "tile:x:y:z".
func TileKey(loc model.Location) string {
	return fmt.Sprintf("%s:%d:%d:%d", KindTile, loc.X, loc.Y, loc.Z)
}

// Place размещает восстановленные предметы в holder по ключу.
// Предметы кладутся в обход transfer.Engine: проверки ёмкости не выполняются.
//
// Parameters:
//   - key: ключ holder'а (tile:x:y:z, depot:owner, inventory:owner)
//   - entries: предметы с исходными индексами, в порядке индексов
func (r *Registry) Place(key string, entries []snapshot.Entry) error {
	kind, rest, _ := strings.Cut(key, ":")
	switch kind {
	case KindTile:
		var loc model.Location
		if _, err := fmt.Sscanf(rest, "%d:%d:%d", &loc.X, &loc.Y, &loc.Z); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrUnknownKey, key, err)
		}
		r.placeOnTile(r.Tile(loc), entries)
	case KindDepot:
		if rest == "" {
			return fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
		d, err := r.Depot(rest)
		if err != nil {
			return err
		}
		for _, e := range entries {
			d.AddItemBack(e.Item)
			r.wire(e.Item)
		}
		d.MarkSaved()
	case KindInventory:
		if rest == "" {
			return fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
		inv := r.Inventory(rest)
		for _, e := range entries {
			if inv.ThingAt(e.Index) != nil {
				slog.Warn("inventory slot already taken on restore",
					"owner", rest,
					"slot", e.Index,
					"item", e.Item.String())
				continue
			}
			inv.AddThing(e.Index, e.Item)
			r.wire(e.Item)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

// placeOnTile восстанавливает порядок tile'а: ground и top-предметы
// встают по TopOrder, обычные предметы вставляются в начало, поэтому
// добавляются в обратном порядке.
func (r *Registry) placeOnTile(t *model.Tile, entries []snapshot.Entry) {
	var down []*model.Item
	for _, e := range entries {
		tmpl := e.Item.Template()
		if tmpl.IsGround() || tmpl.AlwaysOnTop {
			t.AddThing(model.IndexWherever, e.Item)
			r.wire(e.Item)
			continue
		}
		down = append(down, e.Item)
	}
	for _, item := range slices.Backward(down) {
		t.AddThing(model.IndexWherever, item)
		r.wire(item)
	}
}

// wire подключает mailbox'ы (включая вложенные) к реестру.
func (r *Registry) wire(item *model.Item) {
	if m := item.Mailbox(); m != nil {
		m.SetPostOffice(r)
	}
	if c := item.Container(); c != nil {
		for _, it := range c.Items() {
			r.wire(it)
		}
	}
}

// OnItemAdded implements transfer.Observer.
func (r *Registry) OnItemAdded(holder model.Holder, item *model.Item, index int32) {
	r.wire(item)
}

// OnItemRemoved implements transfer.Observer.
func (r *Registry) OnItemRemoved(holder model.Holder, item *model.Item, index int32) {}
