// Package transfer реализует транзакции над предметами поверх holder protocol:
// перемещение, добавление, удаление, transform, монеты и отложенное уничтожение.
//
// Engine не потокобезопасен. Все вызовы идут из simulation loop; observers
// вызываются синхронно и могут запускать вложенные транзакции.
package transfer

import (
	"log/slog"

	"github.com/udisondev/itemcore/internal/game/decay"
	"github.com/udisondev/itemcore/internal/model"
)

// DefaultMaxRedirectDepth — предел цепочки QueryDestination (число слоёв карты).
const DefaultMaxRedirectDepth = 16

// Catalog описывает то, что Engine использует из каталога предметов.
type Catalog interface {
	Lookup(itemID int32) *model.ItemTemplate
	CreateItem(itemID int32, count uint16) (*model.Item, error)
	Currencies() []*model.ItemTemplate
	NewSerial() uint32
}

// Observer получает уведомления после каждой успешной мутации.
type Observer interface {
	OnItemAdded(holder model.Holder, item *model.Item, index int32)
	OnItemRemoved(holder model.Holder, item *model.Item, index int32)
}

// Options настраивают Engine.
type Options struct {
	MaxRedirectDepth int
}

// Engine проводит транзакции над предметами.
type Engine struct {
	catalog   Catalog
	decay     *decay.Scheduler
	maxDepth  int
	observers []Observer

	toRelease []*model.Item
}

var _ decay.Handler = (*Engine)(nil)

// NewEngine создаёт Engine и подключает его как handler scheduler'а.
//
// Parameters:
//   - catalog: фабрика и таблица шаблонов
//   - sched: decay scheduler (Engine становится его Handler)
//   - opts: лимиты (нулевые значения заменяются дефолтами)
func NewEngine(catalog Catalog, sched *decay.Scheduler, opts Options) *Engine {
	if opts.MaxRedirectDepth <= 0 {
		opts.MaxRedirectDepth = DefaultMaxRedirectDepth
	}
	e := &Engine{
		catalog:  catalog,
		decay:    sched,
		maxDepth: opts.MaxRedirectDepth,
	}
	sched.SetHandler(e)
	return e
}

// Subscribe регистрирует observer.
func (e *Engine) Subscribe(o Observer) {
	e.observers = append(e.observers, o)
}

// Scheduler возвращает подключённый decay scheduler.
func (e *Engine) Scheduler() *decay.Scheduler {
	return e.decay
}

// CreateItem создаёт предмет через каталог и регистрирует его в decay.
// Вызывающий владеет ссылкой: неразмещённый предмет нужно вернуть через ReleaseItem.
func (e *Engine) CreateItem(itemID int32, count uint16) (*model.Item, error) {
	item, err := e.catalog.CreateItem(itemID, count)
	if err != nil {
		return nil, err
	}
	e.decay.Start(item)
	return item, nil
}

// ReleaseItem ставит предмет в очередь на снятие ссылки в конце тика.
func (e *Engine) ReleaseItem(item *model.Item) {
	e.toRelease = append(e.toRelease, item)
}

// PendingReleases возвращает длину очереди освобождения.
func (e *Engine) PendingReleases() int {
	return len(e.toRelease)
}

// Cleanup выполняет end-of-tick sweep: снимает ссылки и уничтожает предметы,
// у которых счётчик дошёл до нуля. Предмет, всё ещё привязанный к holder'у,
// не уничтожается.
func (e *Engine) Cleanup() {
	for len(e.toRelease) > 0 {
		batch := e.toRelease
		e.toRelease = nil

		for _, item := range batch {
			if item.IsDestroyed() {
				continue
			}
			if item.DecRef() > 0 {
				continue
			}
			if h := item.Holder(); h != nil {
				slog.Error("released item is still linked",
					"item", item.Serial(),
					"type", item.ItemID(),
					"holder", h.String())
				continue
			}
			e.destroy(item)
		}
	}
}

// destroy финализирует предмет; содержимое контейнера отвязывается
// и уходит в ту же очередь.
func (e *Engine) destroy(item *model.Item) {
	if c := item.Container(); c != nil {
		for _, child := range c.Items() {
			c.RemoveThing(child, child.Count())
			e.decay.Stop(child)
			e.ReleaseItem(child)
		}
	}
	if err := item.Destroy(); err != nil {
		slog.Error("destroy item", "item", item.Serial(), "type", item.ItemID(), "error", err)
	}
}

// DecayItem implements decay.Handler: превращает предмет в DecayTo
// или удаляет его.
func (e *Engine) DecayItem(item *model.Item) {
	if item.Holder() == nil {
		slog.Debug("decayed item has no holder", "item", item.String())
		return
	}

	decayTo := item.Template().DecayTo
	if decayTo != 0 {
		if newItem := e.TransformItem(item, decayTo, -1); newItem != nil {
			e.startDecay(newItem)
		}
		return
	}

	if ret := e.RemoveItem(item, -1, false, model.FlagIgnoreNotMoveable); ret != model.RetOK {
		slog.Warn("remove decayed item",
			"item", item.Serial(),
			"type", item.ItemID(),
			"holder", item.Holder().String(),
			"result", ret.String())
	}
}

func (e *Engine) startDecay(item *model.Item) {
	if item == nil || item.IsDestroyed() {
		return
	}
	e.decay.Start(item)
}

// discard снимает предмет с decay и отдаёт ссылку мира в очередь освобождения.
func (e *Engine) discard(item *model.Item) {
	e.decay.Stop(item)
	e.ReleaseItem(item)
}

// resolve проходит цепочку QueryDestination до стабильного holder'а.
func (e *Engine) resolve(to model.Holder, index int32, item *model.Item, flags model.Flags) (model.Holder, int32, *model.Item, bool) {
	for depth := 0; ; depth++ {
		next, nextIndex, destItem := to.QueryDestination(index, item, flags)
		index = nextIndex
		if next == to {
			return to, index, destItem, true
		}
		if depth >= e.maxDepth {
			slog.Error("destination redirect depth exceeded",
				"item", item.Serial(),
				"type", item.ItemID(),
				"holder", to.String(),
				"depth", depth)
			return nil, 0, nil, false
		}
		to = next
	}
}

func (e *Engine) notifyAdded(h model.Holder, item *model.Item, oldParent model.Holder) {
	index := h.ThingIndex(item)
	if index == -1 {
		return
	}
	h.PostAddNotification(item, oldParent, index, model.LinkOwner)
	for _, o := range e.observers {
		o.OnItemAdded(h, item, index)
	}
}

func (e *Engine) notifyRemoved(h model.Holder, item *model.Item, newParent model.Holder, index int32) {
	if index == -1 {
		return
	}
	h.PostRemoveNotification(item, newParent, index, model.LinkOwner)
	for _, o := range e.observers {
		o.OnItemRemoved(h, item, index)
	}
}
