package testutil

import (
	"testing"

	"github.com/udisondev/itemcore/internal/data"
	"github.com/udisondev/itemcore/internal/model"
)

// MustParseCatalog парсит YAML-каталог и требует отсутствия ошибок данных.
func MustParseCatalog(t testing.TB, yamlText string) *data.Catalog {
	t.Helper()
	c, err := data.ParseCatalogYAML([]byte(yamlText))
	if err != nil {
		t.Fatalf("parsing test catalog: %v", err)
	}
	if p := c.Problems(); len(p) > 0 {
		t.Fatalf("test catalog has data problems: %v", p)
	}
	return c
}

// CountOf суммирует единицы типа itemID в holder'е и вложенных контейнерах.
func CountOf(h model.Holder, itemID int32) uint32 {
	var n uint32
	for i := h.FirstIndex(); i < h.LastIndex(); i++ {
		it := h.ThingAt(i)
		if it == nil {
			continue
		}
		if it.ItemID() == itemID {
			n += it.Count()
		}
		if c := it.Container(); c != nil {
			n += CountOf(c, itemID)
		}
	}
	return n
}

// AssertLinked проверяет, что каждый предмет holder'а (рекурсивно) ссылается
// на свой holder и встречается ровно один раз.
func AssertLinked(t testing.TB, h model.Holder) {
	t.Helper()
	seen := make(map[*model.Item]bool)
	var walk func(model.Holder)
	walk = func(h model.Holder) {
		for i := h.FirstIndex(); i < h.LastIndex(); i++ {
			it := h.ThingAt(i)
			if it == nil {
				continue
			}
			if seen[it] {
				t.Errorf("item %s is reachable twice", it)
			}
			seen[it] = true
			if it.Holder() != h {
				t.Errorf("item %s is at %s but links to %v", it, h, it.Holder())
			}
			if it.IsDestroyed() {
				t.Errorf("destroyed item %s is still in %s", it, h)
			}
			if c := it.Container(); c != nil {
				walk(it.AsHolder())
			}
		}
	}
	walk(h)
}
