package transfer

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/udisondev/itemcore/internal/model"
)

// FindItemOfType ищет предмет типа itemID в holder'е, затем (если deep)
// во вложенных контейнерах в ширину. subType == -1 — любой sub-type.
func (e *Engine) FindItemOfType(h model.Holder, itemID int32, deep bool, subType int32) *model.Item {
	match := func(it *model.Item) bool {
		return it.ItemID() == itemID && (subType == -1 || subType == it.SubType())
	}

	var containers []*model.Container
	for i := h.FirstIndex(); i < h.LastIndex(); i++ {
		it := h.ThingAt(i)
		if it == nil {
			continue
		}
		if match(it) {
			return it
		}
		if c := it.Container(); deep && c != nil {
			containers = append(containers, c)
		}
	}

	for i := 0; i < len(containers); i++ {
		for _, it := range containers[i].Items() {
			if match(it) {
				return it
			}
			if c := it.Container(); c != nil {
				containers = append(containers, c)
			}
		}
	}
	return nil
}

// moneyItems собирает денежные предметы, достижимые из holder'а (в ширину).
func moneyItems(h model.Holder) []*model.Item {
	var (
		money      []*model.Item
		containers []*model.Container
	)
	visit := func(it *model.Item) {
		if c := it.Container(); c != nil {
			containers = append(containers, c)
			return
		}
		if it.Worth() != 0 {
			money = append(money, it)
		}
	}

	for i := h.FirstIndex(); i < h.LastIndex(); i++ {
		if it := h.ThingAt(i); it != nil {
			visit(it)
		}
	}
	for i := 0; i < len(containers); i++ {
		for _, it := range containers[i].Items() {
			visit(it)
		}
	}
	return money
}

// MoneyOf возвращает суммарную стоимость денег, достижимых из holder'а.
func (e *Engine) MoneyOf(h model.Holder) uint64 {
	var total uint64
	for _, it := range moneyItems(h) {
		total += it.Worth()
	}
	return total
}

// AddMoney раскладывает amount на монеты от крупных к мелким и добавляет их
// в holder. Стак, не прошедший проверки, добавляется с FlagNoLimit.
// Возвращает стоимость, которую не удалось разместить.
func (e *Engine) AddMoney(h model.Holder, amount uint64, flags model.Flags) uint64 {
	var lost uint64
	for _, cur := range e.catalog.Currencies() {
		coins := amount / cur.Worth
		if coins == 0 {
			continue
		}
		amount -= coins * cur.Worth

		for coins > 0 {
			n := min(coins, model.MaxStackCount)
			coins -= n

			item, err := e.CreateItem(cur.ItemID, uint16(n))
			if err != nil {
				slog.Error("create coins", "type", cur.ItemID, "count", n, "error", err)
				lost += n * cur.Worth
				continue
			}
			if !e.placeCoins(h, item, flags) {
				slog.Warn("coins do not fit",
					"holder", h.String(),
					"type", cur.ItemID,
					"count", item.Count())
				lost += uint64(item.Count()) * cur.Worth
				e.discard(item)
			}
		}
	}
	return lost + amount
}

func (e *Engine) placeCoins(h model.Holder, item *model.Item, flags model.Flags) bool {
	for _, f := range []model.Flags{flags, flags | model.FlagNoLimit} {
		ret, rem := e.AddItemRemainder(h, item, model.IndexWherever, f, false)
		if ret == model.RetOK && rem == 0 {
			return true
		}
	}
	return false
}

// RemoveMoney забирает amount из денег, достижимых из holder'а.
//
// Стаки обходятся по возрастанию стоимости стака; стак, который стоит больше
// остатка, разменивается: снимается ceil(остаток/номинал) монет, сдача
// добавляется через AddMoney после снятия. Все снятия проверяются до первой
// мутации; сдача, которую нельзя выразить монетами каталога, → RetNotPossible.
func (e *Engine) RemoveMoney(h model.Holder, amount uint64, flags model.Flags) model.ReturnValue {
	if amount == 0 {
		return model.RetOK
	}

	money := moneyItems(h)
	var total uint64
	for _, it := range money {
		total += it.Worth()
	}
	if total < amount {
		return model.RetNotEnoughMoney
	}

	slices.SortStableFunc(money, func(a, b *model.Item) int {
		return cmp.Compare(a.Worth(), b.Worth())
	})

	type take struct {
		item  *model.Item
		count int32 // -1 — весь стак
	}
	var (
		plan   []take
		change uint64
	)
	for _, it := range money {
		if worth := it.Worth(); worth <= amount {
			plan = append(plan, take{item: it, count: -1})
			amount -= worth
			if amount == 0 {
				break
			}
			continue
		}
		unit := it.Template().Worth
		n := (amount + unit - 1) / unit
		plan = append(plan, take{item: it, count: int32(n)})
		change = unit*n - amount
		break
	}

	if change > 0 && !e.representable(change) {
		slog.Warn("change cannot be paid in coins",
			"holder", h.String(),
			"change", change)
		return model.RetNotPossible
	}
	for _, tk := range plan {
		if ret := e.RemoveItem(tk.item, tk.count, true, flags); ret != model.RetOK {
			return ret
		}
	}

	for _, tk := range plan {
		if ret := e.RemoveItem(tk.item, tk.count, false, flags); ret != model.RetOK {
			slog.Error("remove of checked coins failed",
				"item", tk.item.Serial(),
				"type", tk.item.ItemID(),
				"count", tk.count,
				"ret", ret)
			return ret
		}
	}
	if change > 0 {
		if lost := e.AddMoney(h, change, flags); lost > 0 {
			slog.Error("change lost",
				"holder", h.String(),
				"change", change,
				"lost", lost)
			return model.RetNotEnoughRoom
		}
	}
	return model.RetOK
}

// representable сообщает, раскладывается ли amount на номиналы каталога без остатка.
func (e *Engine) representable(amount uint64) bool {
	for _, cur := range e.catalog.Currencies() {
		amount %= cur.Worth
	}
	return amount == 0
}
