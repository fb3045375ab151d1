package data

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/itemcore/internal/model"
)

//go:embed catalog.schema.json
var catalogSchemaJSON string

const catalogSchemaURL = "itemcore://catalog.schema.json"

// itemDef — определение предмета: Go-литералы встроенного каталога и записи файла каталога.
type itemDef struct {
	ID          int32    `yaml:"id" json:"id"`
	ClientID    int32    `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Name        string   `yaml:"name" json:"name"`
	Type        string   `yaml:"type,omitempty" json:"type,omitempty"`
	Group       string   `yaml:"group,omitempty" json:"group,omitempty"`
	Weight      int32    `yaml:"weight,omitempty" json:"weight,omitempty"`
	Stackable   bool     `yaml:"stackable,omitempty" json:"stackable,omitempty"`
	HasCharges  bool     `yaml:"hasCharges,omitempty" json:"hasCharges,omitempty"`
	Charges     uint16   `yaml:"charges,omitempty" json:"charges,omitempty"`
	Capacity    int32    `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	Worth       uint64   `yaml:"worth,omitempty" json:"worth,omitempty"`
	DecayTo     int32    `yaml:"decayTo,omitempty" json:"decayTo,omitempty"`
	DecayTimeMs int64    `yaml:"decayTimeMs,omitempty" json:"decayTimeMs,omitempty"`
	Slots       []string `yaml:"slots,omitempty" json:"slots,omitempty"`
	TwoHanded   bool     `yaml:"twoHanded,omitempty" json:"twoHanded,omitempty"`
	AlwaysOnTop bool     `yaml:"alwaysOnTop,omitempty" json:"alwaysOnTop,omitempty"`
	TopOrder    int32    `yaml:"topOrder,omitempty" json:"topOrder,omitempty"`
	BlockSolid  bool     `yaml:"blockSolid,omitempty" json:"blockSolid,omitempty"`
	BlockPath   bool     `yaml:"blockPath,omitempty" json:"blockPath,omitempty"`
	Moveable    bool     `yaml:"moveable,omitempty" json:"moveable,omitempty"`
	Pickupable  bool     `yaml:"pickupable,omitempty" json:"pickupable,omitempty"`
	Mailable    bool     `yaml:"mailable,omitempty" json:"mailable,omitempty"`
}

type catalogFile struct {
	Items []itemDef `yaml:"items" json:"items"`
}

func (d *itemDef) template() (*model.ItemTemplate, error) {
	if d.ID <= 0 {
		return nil, fmt.Errorf("item %q: id must be positive, got %d", d.Name, d.ID)
	}

	itemType := model.ItemTypeEtcItem
	if d.Type != "" {
		t, ok := model.ParseItemType(d.Type)
		if !ok {
			return nil, fmt.Errorf("item %d: unknown type %q", d.ID, d.Type)
		}
		itemType = t
	}

	group := model.GroupNone
	if d.Group != "" {
		g, ok := model.ParseItemGroup(d.Group)
		if !ok {
			return nil, fmt.Errorf("item %d: unknown group %q", d.ID, d.Group)
		}
		group = g
	}

	mask, unknown := model.ParseSlotMask(d.Slots)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("item %d: unknown slots %v", d.ID, unknown)
	}

	clientID := d.ClientID
	if clientID == 0 {
		clientID = d.ID
	}

	return &model.ItemTemplate{
		ItemID:      d.ID,
		ClientID:    clientID,
		Name:        d.Name,
		Type:        itemType,
		Group:       group,
		Weight:      d.Weight,
		Stackable:   d.Stackable,
		HasCharges:  d.HasCharges,
		Charges:     d.Charges,
		Capacity:    d.Capacity,
		Worth:       d.Worth,
		DecayTo:     d.DecayTo,
		DecayTime:   time.Duration(d.DecayTimeMs) * time.Millisecond,
		SlotMask:    mask,
		TwoHanded:   d.TwoHanded,
		AlwaysOnTop: d.AlwaysOnTop,
		TopOrder:    d.TopOrder,
		BlockSolid:  d.BlockSolid,
		BlockPath:   d.BlockPath,
		Moveable:    d.Moveable,
		Pickupable:  d.Pickupable,
		Mailable:    d.Mailable,
	}, nil
}

// defOf — каноническая форма шаблона (для digest).
func defOf(t *model.ItemTemplate) itemDef {
	return itemDef{
		ID:          t.ItemID,
		ClientID:    t.ClientID,
		Name:        t.Name,
		Type:        t.Type.String(),
		Group:       t.Group.String(),
		Weight:      t.Weight,
		Stackable:   t.Stackable,
		HasCharges:  t.HasCharges,
		Charges:     t.Charges,
		Capacity:    t.Capacity,
		Worth:       t.Worth,
		DecayTo:     t.DecayTo,
		DecayTimeMs: t.DecayTime.Milliseconds(),
		Slots:       slotNames(t.SlotMask),
		TwoHanded:   t.TwoHanded,
		AlwaysOnTop: t.AlwaysOnTop,
		TopOrder:    t.TopOrder,
		BlockSolid:  t.BlockSolid,
		BlockPath:   t.BlockPath,
		Moveable:    t.Moveable,
		Pickupable:  t.Pickupable,
		Mailable:    t.Mailable,
	}
}

var slotOrder = []struct {
	name string
	slot int32
}{
	{"head", model.PaperdollHead},
	{"necklace", model.PaperdollNecklace},
	{"backpack", model.PaperdollBackpack},
	{"armor", model.PaperdollArmor},
	{"right", model.PaperdollRight},
	{"left", model.PaperdollLeft},
	{"legs", model.PaperdollLegs},
	{"feet", model.PaperdollFeet},
	{"ring", model.PaperdollRing},
	{"ammo", model.PaperdollAmmo},
}

func slotNames(mask model.SlotMask) []string {
	var out []string
	for _, s := range slotOrder {
		if mask.Has(s.slot) {
			out = append(out, s.name)
		}
	}
	return out
}

// LoadCatalogFile загружает каталог из YAML (.yaml/.yml) или JSON (.json).
// JSON дополнительно проверяется встроенной JSON Schema.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseCatalogJSON(raw)
	case ".yaml", ".yml":
		return ParseCatalogYAML(raw)
	default:
		return nil, fmt.Errorf("%w: unsupported catalog format %q", ErrInvalidCatalog, filepath.Ext(path))
	}
}

// ParseCatalogYAML разбирает каталог в формате YAML.
func ParseCatalogYAML(raw []byte) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %w", ErrInvalidCatalog, err)
	}
	return NewCatalog(f.Items)
}

// ParseCatalogJSON проверяет документ схемой и разбирает каталог.
func ParseCatalogJSON(raw []byte) (*Catalog, error) {
	schema, err := jsonschema.CompileString(catalogSchemaURL, catalogSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse json: %w", ErrInvalidCatalog, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	var f catalogFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: decode json: %w", ErrInvalidCatalog, err)
	}
	return NewCatalog(f.Items)
}

// WriteYAML записывает каталог в формате файла каталога (шаблоны по ID).
func (c *Catalog) WriteYAML(w io.Writer) error {
	tmpls := c.Templates()
	f := catalogFile{Items: make([]itemDef, len(tmpls))}
	for i, t := range tmpls {
		f.Items[i] = defOf(t)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}
