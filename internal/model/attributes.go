package model

import (
	"maps"
	"slices"
)

// AttrKey идентифицирует расширенный атрибут предмета.
// Значения стабильны: они попадают в сериализованную форму.
type AttrKey uint8

const (
	AttrName        AttrKey = 1
	AttrArticle     AttrKey = 2
	AttrPluralName  AttrKey = 3
	AttrDescription AttrKey = 4
	AttrText        AttrKey = 5
	AttrWriter      AttrKey = 6
	AttrWrittenDate AttrKey = 7
	AttrUniqueID    AttrKey = 8
	AttrActionID    AttrKey = 9
	AttrDuration    AttrKey = 10 // remaining milliseconds
	AttrDecayState  AttrKey = 11
)

// IsString reports whether the key holds a string value.
func (k AttrKey) IsString() bool {
	switch k {
	case AttrName, AttrArticle, AttrPluralName, AttrDescription, AttrText, AttrWriter:
		return true
	default:
		return false
	}
}

// IsKnown reports whether the key belongs to the fixed attribute set.
func (k AttrKey) IsKnown() bool {
	return k >= AttrName && k <= AttrDecayState
}

// CustomValue хранит значение пользовательского атрибута (int или string).
type CustomValue struct {
	Int    int64
	Str    string
	IsText bool
}

// Attributes — разреженный блок атрибутов, выделяется только когда предмет
// отличается от шаблона.
type Attributes struct {
	ints   map[AttrKey]int64
	strs   map[AttrKey]string
	custom map[string]CustomValue
}

// Int returns an integer attribute.
func (a *Attributes) Int(key AttrKey) (int64, bool) {
	if a == nil {
		return 0, false
	}
	v, ok := a.ints[key]
	return v, ok
}

// Str returns a string attribute.
func (a *Attributes) Str(key AttrKey) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a.strs[key]
	return v, ok
}

// SetInt stores an integer attribute.
func (a *Attributes) SetInt(key AttrKey, v int64) {
	if a.ints == nil {
		a.ints = make(map[AttrKey]int64, 2)
	}
	a.ints[key] = v
}

// SetStr stores a string attribute.
func (a *Attributes) SetStr(key AttrKey, v string) {
	if a.strs == nil {
		a.strs = make(map[AttrKey]string, 2)
	}
	a.strs[key] = v
}

// Remove deletes an attribute of either kind.
func (a *Attributes) Remove(key AttrKey) {
	if a == nil {
		return
	}
	delete(a.ints, key)
	delete(a.strs, key)
}

// Custom returns a custom attribute by name.
func (a *Attributes) Custom(name string) (CustomValue, bool) {
	if a == nil {
		return CustomValue{}, false
	}
	v, ok := a.custom[name]
	return v, ok
}

// SetCustom stores a custom attribute.
func (a *Attributes) SetCustom(name string, v CustomValue) {
	if a.custom == nil {
		a.custom = make(map[string]CustomValue, 1)
	}
	a.custom[name] = v
}

// RemoveCustom deletes a custom attribute.
func (a *Attributes) RemoveCustom(name string) {
	if a == nil {
		return
	}
	delete(a.custom, name)
}

// Empty returns true when no attribute is set.
func (a *Attributes) Empty() bool {
	return a == nil || len(a.ints)+len(a.strs)+len(a.custom) == 0
}

// IntKeys returns integer keys in ascending order (deterministic serialization).
func (a *Attributes) IntKeys() []AttrKey {
	if a == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(a.ints))
}

// StrKeys returns string keys in ascending order.
func (a *Attributes) StrKeys() []AttrKey {
	if a == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(a.strs))
}

// CustomKeys returns custom attribute names in ascending order.
func (a *Attributes) CustomKeys() []string {
	if a == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(a.custom))
}

// Clone returns a deep copy (nil stays nil).
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return nil
	}
	return &Attributes{
		ints:   maps.Clone(a.ints),
		strs:   maps.Clone(a.strs),
		custom: maps.Clone(a.custom),
	}
}

// equalForStacking compares two blocks ignoring decay bookkeeping.
func (a *Attributes) equalForStacking(b *Attributes) bool {
	for _, k := range a.IntKeys() {
		if k == AttrDecayState {
			continue
		}
		if v, ok := b.Int(k); !ok || v != a.ints[k] {
			return false
		}
	}
	for _, k := range b.IntKeys() {
		if k == AttrDecayState {
			continue
		}
		if _, ok := a.Int(k); !ok {
			return false
		}
	}
	if a.strLen() != b.strLen() || a.customLen() != b.customLen() {
		return false
	}
	for _, k := range a.StrKeys() {
		if v, ok := b.Str(k); !ok || v != a.strs[k] {
			return false
		}
	}
	for _, k := range a.CustomKeys() {
		if v, ok := b.Custom(k); !ok || v != a.custom[k] {
			return false
		}
	}
	return true
}

func (a *Attributes) strLen() int {
	if a == nil {
		return 0
	}
	return len(a.strs)
}

func (a *Attributes) customLen() int {
	if a == nil {
		return 0
	}
	return len(a.custom)
}
