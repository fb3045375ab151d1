// Package decay реализует time wheel для старения предметов.
//
// Кольцо из N bucket'ов шириной Interval. Каждый Tick посещает ровно один
// bucket, поэтому работа за тик пропорциональна числу предметов в нём,
// а не общему числу портящихся предметов.
//
// Scheduler не потокобезопасен: Start/Stop/Tick вызываются из simulation loop.
package decay

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/udisondev/itemcore/internal/model"
)

// Handler выполняет побочные эффекты истечения.
type Handler interface {
	// DecayItem вызывается, когда время жизни предмета вышло
	// (transform в DecayTo или удаление).
	DecayItem(item *model.Item)
	// ReleaseItem снимает ссылку scheduler'а с предмета.
	ReleaseItem(item *model.Item)
}

const (
	bucketPending  = -2 // ждёт раскладки в конце тика
	bucketInFlight = -1 // обрабатывается текущим Tick
)

type entry struct {
	bucket  int
	filedAt uint64 // tick, на котором предмет положен в bucket
}

// Scheduler ведёт кольцо decay bucket'ов.
type Scheduler struct {
	buckets    [][]*model.Item
	interval   time.Duration
	lastBucket int
	tick       uint64

	pending []*model.Item
	entries map[*model.Item]*entry

	handler Handler
}

// NewScheduler создаёт scheduler.
//
// Parameters:
//   - buckets: количество bucket'ов в кольце (N > 0)
//   - interval: ширина bucket'а и период Tick
func NewScheduler(buckets int, interval time.Duration) (*Scheduler, error) {
	if buckets <= 0 {
		return nil, fmt.Errorf("decay buckets must be positive, got %d", buckets)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("decay interval must be positive, got %s", interval)
	}
	return &Scheduler{
		buckets:  make([][]*model.Item, buckets),
		interval: interval,
		entries:  make(map[*model.Item]*entry),
	}, nil
}

// SetHandler подключает обработчик истечения (обычно transfer.Engine).
func (s *Scheduler) SetHandler(h Handler) {
	s.handler = h
}

// Interval возвращает ширину bucket'а.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Revolution возвращает время полного оборота кольца.
func (s *Scheduler) Revolution() time.Duration {
	return time.Duration(len(s.buckets)) * s.interval
}

// Len возвращает количество отслеживаемых предметов (pending + active).
func (s *Scheduler) Len() int {
	return len(s.entries)
}

// PendingLen возвращает количество предметов, ждущих раскладки.
func (s *Scheduler) PendingLen() int {
	return len(s.pending)
}

// Ticks возвращает количество выполненных Tick.
func (s *Scheduler) Ticks() uint64 {
	return s.tick
}

// IsTracked returns true if the item is pending or active.
func (s *Scheduler) IsTracked(item *model.Item) bool {
	_, ok := s.entries[item]
	return ok
}

// Start регистрирует предмет (Off → Pending). Предмет будет разложен
// по bucket'ам в конце ближайшего Tick. Scheduler держит ссылку на предмет.
func (s *Scheduler) Start(item *model.Item) {
	if !item.CanDecay() {
		return
	}
	if _, ok := s.entries[item]; ok {
		return
	}
	item.SetDecayState(model.DecayPending)
	item.IncRef()
	s.entries[item] = &entry{bucket: bucketPending}
	s.pending = append(s.pending, item)
}

// Stop снимает предмет с учёта (→ Off). Оставшееся время уменьшается
// на прошедшее с момента раскладки.
func (s *Scheduler) Stop(item *model.Item) {
	e, ok := s.entries[item]
	if !ok {
		return
	}
	delete(s.entries, item)

	if e.bucket == bucketPending {
		s.pending = removeItem(s.pending, item)
	} else {
		if e.bucket != bucketInFlight {
			s.buckets[e.bucket] = removeItem(s.buckets[e.bucket], item)
		}
		// in-flight предмет, уже обработанный в этом Tick, имеет filedAt == tick
		if !item.IsDestroyed() {
			elapsed := time.Duration(s.tick-e.filedAt) * s.interval
			item.SetDuration(max(item.Duration()-elapsed, time.Millisecond))
		}
	}

	if !item.IsDestroyed() {
		item.SetDecayState(model.DecayOff)
	}
	s.release(item)
}

// Tick продвигает кольцо на один bucket и обрабатывает его содержимое,
// затем раскладывает pending предметы.
func (s *Scheduler) Tick() {
	n := len(s.buckets)
	s.lastBucket = (s.lastBucket + 1) % n
	s.tick++
	b := s.lastBucket

	visiting := s.buckets[b]
	s.buckets[b] = nil
	for _, item := range visiting {
		if e, ok := s.entries[item]; ok && e.bucket == b {
			e.bucket = bucketInFlight
		}
	}

	var keep []*model.Item
	for _, item := range visiting {
		e, ok := s.entries[item]
		if !ok || e.bucket != bucketInFlight {
			// остановлен или уже переложен
			continue
		}
		if !item.CanDecay() {
			delete(s.entries, item)
			item.SetDecayState(model.DecayOff)
			s.release(item)
			continue
		}

		elapsed := time.Duration(s.tick-e.filedAt) * s.interval
		remaining := item.Duration() - elapsed
		if remaining <= 0 {
			delete(s.entries, item)
			item.SetDuration(0)
			item.SetDecayState(model.DecayOff)
			slog.Debug("item decayed", "item", item.String(), "tick", s.tick)
			if s.handler != nil {
				s.handler.DecayItem(item)
			}
			s.release(item)
			continue
		}

		item.SetDuration(remaining)
		e.filedAt = s.tick
		if remaining < s.Revolution() {
			if nb := (b + s.offset(remaining)) % n; nb != b {
				e.bucket = nb
				s.buckets[nb] = append(s.buckets[nb], item)
				continue
			}
		}
		keep = append(keep, item)
	}

	for _, item := range keep {
		// handler мог остановить предмет во время обхода
		if e, ok := s.entries[item]; ok && e.bucket == bucketInFlight {
			e.bucket = b
			s.buckets[b] = append(s.buckets[b], item)
		}
	}

	s.filePending()
}

func (s *Scheduler) filePending() {
	pending := s.pending
	s.pending = nil
	n := len(s.buckets)

	for _, item := range pending {
		e, ok := s.entries[item]
		if !ok || e.bucket != bucketPending {
			continue
		}
		if !item.CanDecay() {
			delete(s.entries, item)
			item.SetDecayState(model.DecayOff)
			s.release(item)
			continue
		}

		nb := s.lastBucket
		if d := item.Duration(); d < s.Revolution() {
			nb = (s.lastBucket + s.offset(d)) % n
		}
		e.bucket = nb
		e.filedAt = s.tick
		s.buckets[nb] = append(s.buckets[nb], item)
		item.SetDecayState(model.DecayActive)
	}
}

// offset возвращает ceil(d / interval).
func (s *Scheduler) offset(d time.Duration) int {
	return int((d + s.interval - 1) / s.interval)
}

func (s *Scheduler) release(item *model.Item) {
	if s.handler != nil {
		s.handler.ReleaseItem(item)
		return
	}
	item.DecRef()
}

func removeItem(items []*model.Item, item *model.Item) []*model.Item {
	if i := slices.Index(items, item); i >= 0 {
		return slices.Delete(items, i, i+1)
	}
	return items
}
