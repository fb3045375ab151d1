package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/udisondev/itemcore/internal/data"
	"github.com/udisondev/itemcore/internal/db"
	"github.com/udisondev/itemcore/internal/game/transfer"
	"github.com/udisondev/itemcore/internal/gameloop"
	"github.com/udisondev/itemcore/internal/model"
	"github.com/udisondev/itemcore/internal/snapshot"
	"github.com/udisondev/itemcore/internal/world"
)

// persistence сохраняет мир в snapshot-файл и depot'ы в PostgreSQL.
// При подключённой БД depot'ы грузятся из неё, а не из snapshot'а.
type persistence struct {
	catalog  *data.Catalog
	engine   *transfer.Engine
	registry *world.Registry
	path     string
	repo     *db.ItemRepository

	retry    map[string]bool // depot'ы, которые не удалось сохранить
	inflight *capture        // снят в loop, но ещё не записан
}

// capture — состояние мира, отвязанное от goroutine loop.
type capture struct {
	holders []snapshot.HolderV1
	depots  map[string][]*model.Item
}

func (p *persistence) enabled() bool {
	return p.path != "" || p.repo != nil
}

func (p *persistence) restore(ctx context.Context) error {
	if p.path != "" {
		if err := p.restoreSnapshot(); err != nil {
			return err
		}
	}
	if p.repo != nil {
		if err := p.restoreDepots(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *persistence) restoreSnapshot() error {
	snap, err := snapshot.Read(p.path, p.catalog.DigestHex())
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no snapshot, starting with an empty world", "path", p.path)
		return nil
	}
	if err != nil {
		return err
	}
	restored, err := snapshot.Restore(p.engine, snap)
	if err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", snap.Header.ID, err)
	}
	for key, entries := range restored {
		if p.repo != nil && strings.HasPrefix(key, world.KindDepot+":") {
			continue
		}
		if err := p.registry.Place(key, entries); err != nil {
			return err
		}
	}
	slog.Info("snapshot restored",
		"id", snap.Header.ID,
		"created_at", snap.Header.CreatedAt,
		"holders", snap.Header.Holders,
		"items", snap.Header.Items)
	return nil
}

func (p *persistence) restoreDepots(ctx context.Context) error {
	keys, err := p.repo.HolderKeys(ctx)
	if err != nil {
		return err
	}
	var depots int
	for _, key := range keys {
		if !strings.HasPrefix(key, world.KindDepot+":") {
			continue
		}
		items, err := p.repo.LoadHolder(ctx, p.engine, key)
		if err != nil {
			return err
		}
		entries := make([]snapshot.Entry, len(items))
		for i, item := range items {
			entries[i] = snapshot.Entry{Index: int32(i), Item: item}
		}
		if err := p.registry.Place(key, entries); err != nil {
			return err
		}
		depots++
	}
	slog.Info("depots loaded from database", "depots", depots)
	return nil
}

// capture вызывается в goroutine loop (или после его остановки).
// Содержимое depot'ов клонируется, чтобы запись в БД шла вне loop.
func (p *persistence) capture() capture {
	var c capture
	if p.path != "" {
		c.holders = snapshot.Capture(p.registry.Holders())
	}
	if p.repo == nil {
		return c
	}

	owners := p.registry.DirtyDepots()
	for owner := range p.retry {
		owners = append(owners, owner)
	}
	c.depots = make(map[string][]*model.Item, len(owners))
	for _, owner := range owners {
		items := p.registry.DepotItems(owner)
		clones := make([]*model.Item, len(items))
		for i, it := range items {
			clones[i] = it.Clone(p.catalog.NewSerial)
		}
		c.depots[world.KindDepot+":"+owner] = clones
		if d, ok := p.registry.LockerFor(owner); ok {
			d.MarkSaved()
		}
	}
	p.retry = nil
	return c
}

func (p *persistence) write(ctx context.Context, c capture) error {
	var errs []error
	if p.path != "" {
		hdr, err := snapshot.Write(p.path, p.catalog.DigestHex(), c.holders)
		if err != nil {
			errs = append(errs, fmt.Errorf("writing snapshot: %w", err))
		} else {
			slog.Info("snapshot written", "id", hdr.ID, "holders", hdr.Holders, "items", hdr.Items)
		}
	}
	if len(c.depots) > 0 {
		if err := p.repo.SaveHolders(ctx, c.depots); err != nil {
			p.requeue(c)
			errs = append(errs, fmt.Errorf("saving depots: %w", err))
		}
	}
	return errors.Join(errs...)
}

// requeue возвращает depot'ы незаписанного capture в очередь повтора.
func (p *persistence) requeue(c capture) {
	if p.retry == nil {
		p.retry = make(map[string]bool, len(c.depots))
	}
	for key := range c.depots {
		p.retry[strings.TrimPrefix(key, world.KindDepot+":")] = true
	}
}

// save делает capture и запись в текущей goroutine. Только при остановленном loop.
func (p *persistence) save(ctx context.Context) error {
	if p.inflight != nil {
		p.requeue(*p.inflight)
		p.inflight = nil
	}
	return p.write(ctx, p.capture())
}

// run периодически сохраняет мир. Ошибки записи логируются, цикл продолжается.
func (p *persistence) run(ctx context.Context, loop *gameloop.Loop, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// При отмене ctx задача может выполниться уже в drain loop'а;
			// тогда inflight подберёт финальный save.
			err := loop.Do(ctx, func() {
				c := p.capture()
				p.inflight = &c
			})
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, gameloop.ErrStopped) {
					return nil
				}
				return fmt.Errorf("capturing world: %w", err)
			}
			c := *p.inflight
			p.inflight = nil
			if err := p.write(ctx, c); err != nil {
				slog.Error("periodic save failed", "error", err)
			}
		}
	}
}
