package data

import (
	"cmp"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"

	"golang.org/x/crypto/blake2b"

	"github.com/udisondev/itemcore/internal/model"
)

// ErrInvalidCatalog — каталог структурно некорректен (дубликаты ID, неизвестные типы, ошибки схемы).
var ErrInvalidCatalog = errors.New("invalid item catalog")

// Catalog хранит неизменяемую таблицу шаблонов предметов и создаёт экземпляры.
// После создания читается из любого goroutine; счётчик serial атомарный.
type Catalog struct {
	byID       map[int32]*model.ItemTemplate
	byClientID map[int32]*model.ItemTemplate
	currencies []*model.ItemTemplate // coarse → fine
	digest     [blake2b.Size256]byte
	problems   []string

	nextSerial atomic.Uint32
}

// NewCatalog строит каталог из определений.
// Структурные ошибки возвращаются как ErrInvalidCatalog; ошибки данных
// (битые ссылки decayTo, циклы decay, дубликаты client ID) логируются один раз
// и доступны через Problems.
func NewCatalog(defs []itemDef) (*Catalog, error) {
	c := &Catalog{
		byID:       make(map[int32]*model.ItemTemplate, len(defs)),
		byClientID: make(map[int32]*model.ItemTemplate, len(defs)),
	}

	for i := range defs {
		tmpl, err := defs[i].template()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
		if _, dup := c.byID[tmpl.ItemID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %d", ErrInvalidCatalog, tmpl.ItemID)
		}
		c.byID[tmpl.ItemID] = tmpl
	}

	for _, tmpl := range c.Templates() {
		if prev, dup := c.byClientID[tmpl.ClientID]; dup {
			c.problem("duplicate client id", "client_id", tmpl.ClientID, "item_id", tmpl.ItemID, "previous", prev.ItemID)
			continue
		}
		c.byClientID[tmpl.ClientID] = tmpl
		if tmpl.IsMoney() {
			c.currencies = append(c.currencies, tmpl)
		}
	}
	slices.SortStableFunc(c.currencies, func(a, b *model.ItemTemplate) int {
		return cmp.Compare(b.Worth, a.Worth)
	})

	c.validate()

	digest, err := digestOf(c.Templates())
	if err != nil {
		return nil, fmt.Errorf("digest catalog: %w", err)
	}
	c.digest = digest

	slog.Info("loaded item templates",
		"count", len(c.byID),
		"currencies", len(c.currencies),
		"problems", len(c.problems))
	return c, nil
}

// Default возвращает встроенный каталог.
func Default() *Catalog {
	c, err := NewCatalog(defaultItems)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

func (c *Catalog) problem(msg string, args ...any) {
	slog.Warn("item catalog: "+msg, args...)
	c.problems = append(c.problems, fmt.Sprintf("%s %v", msg, args))
}

// validate ищет ошибки данных, не мешающие работе.
func (c *Catalog) validate() {
	for _, tmpl := range c.Templates() {
		if tmpl.DecayTo != 0 {
			if _, ok := c.byID[tmpl.DecayTo]; !ok {
				c.problem("decayTo points at unknown item", "item_id", tmpl.ItemID, "decay_to", tmpl.DecayTo)
			}
		}
		if tmpl.IsContainer() && tmpl.Capacity <= 0 {
			c.problem("container without capacity", "item_id", tmpl.ItemID)
		}
		if tmpl.Stackable && (tmpl.HasCharges || tmpl.IsContainer()) {
			c.problem("stackable item with charges or slots", "item_id", tmpl.ItemID)
		}
		if tmpl.IsMoney() && !tmpl.Stackable {
			c.problem("money must be stackable", "item_id", tmpl.ItemID)
		}
		if c.decayCycle(tmpl) {
			c.problem("decay chain cycles", "item_id", tmpl.ItemID)
		}
	}
}

// decayCycle returns true if following decayTo from tmpl revisits a decaying type.
func (c *Catalog) decayCycle(tmpl *model.ItemTemplate) bool {
	seen := map[int32]bool{}
	for cur := tmpl; cur != nil && cur.Decays(); cur = c.byID[cur.DecayTo] {
		if seen[cur.ItemID] {
			return true
		}
		seen[cur.ItemID] = true
		if cur.DecayTo == 0 {
			return false
		}
	}
	return false
}

// Lookup возвращает шаблон по ID. Неизвестный ID даёт пустой шаблон.
func (c *Catalog) Lookup(itemID int32) *model.ItemTemplate {
	if tmpl, ok := c.byID[itemID]; ok {
		return tmpl
	}
	return model.EmptyTemplate()
}

// Has returns true if the item type is defined.
func (c *Catalog) Has(itemID int32) bool {
	_, ok := c.byID[itemID]
	return ok
}

// ByClientID разрешает client ID (адресное пространство протокола).
func (c *Catalog) ByClientID(clientID int32) *model.ItemTemplate {
	if tmpl, ok := c.byClientID[clientID]; ok {
		return tmpl
	}
	return model.EmptyTemplate()
}

// Templates возвращает все шаблоны по возрастанию ID.
func (c *Catalog) Templates() []*model.ItemTemplate {
	out := slices.Collect(maps.Values(c.byID))
	slices.SortFunc(out, func(a, b *model.ItemTemplate) int {
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	return out
}

// Len возвращает количество шаблонов.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Currencies возвращает денежные шаблоны от крупных к мелким.
func (c *Catalog) Currencies() []*model.ItemTemplate {
	return slices.Clone(c.currencies)
}

// Problems возвращает ошибки данных, найденные при загрузке.
func (c *Catalog) Problems() []string {
	return slices.Clone(c.problems)
}

// Digest возвращает BLAKE2b-256 от канонической формы каталога.
func (c *Catalog) Digest() [blake2b.Size256]byte {
	return c.digest
}

// DigestHex возвращает digest в hex.
func (c *Catalog) DigestHex() string {
	return hex.EncodeToString(c.digest[:])
}

// NewSerial выдаёт следующий serial экземпляра.
func (c *Catalog) NewSerial() uint32 {
	return c.nextSerial.Add(1)
}

// EnsureSerialAbove сдвигает счётчик так, чтобы новые serial были больше n
// (после загрузки сохранённых предметов).
func (c *Catalog) EnsureSerialAbove(n uint32) {
	for {
		cur := c.nextSerial.Load()
		if cur >= n || c.nextSerial.CompareAndSwap(cur, n) {
			return
		}
	}
}

// CreateItem остаётся единственным путём создания корректного экземпляра.
//
// Parameters:
//   - itemID: ID шаблона
//   - count: размер стака / charges / fluid sub-type (0 = дефолт шаблона)
func (c *Catalog) CreateItem(itemID int32, count uint16) (*model.Item, error) {
	tmpl, ok := c.byID[itemID]
	if !ok {
		return nil, fmt.Errorf("create item: unknown item id %d", itemID)
	}
	return model.NewItem(c.NewSerial(), tmpl, count)
}

func digestOf(templates []*model.ItemTemplate) ([blake2b.Size256]byte, error) {
	var sum [blake2b.Size256]byte
	h, err := blake2b.New256(nil)
	if err != nil {
		return sum, err
	}
	enc := json.NewEncoder(h)
	for _, tmpl := range templates {
		if err := enc.Encode(defOf(tmpl)); err != nil {
			return sum, err
		}
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
