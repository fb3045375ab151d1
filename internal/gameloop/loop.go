// Package gameloop implements a single-goroutine simulation loop.
//
// Все транзакции над предметами (transfer.Engine, decay.Scheduler) выполняются
// в goroutine Run, поэтому model/transfer/decay обходятся без блокировок.
// Другие goroutine передают работу через Post/Do.
package gameloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize — ёмкость очереди задач по умолчанию.
const DefaultQueueSize = 1024

var (
	// ErrStopped возвращается Post/Do после завершения Run.
	ErrStopped = errors.New("gameloop: stopped")
	// ErrRunning возвращается при повторном Run или Every во время работы.
	ErrRunning = errors.New("gameloop: already running")
)

type periodic struct {
	name     string
	interval time.Duration
	fn       func()
}

// Loop выполняет задачи последовательно в одной goroutine.
type Loop struct {
	tasks chan func()
	done  chan struct{}

	mu       sync.Mutex
	periodic []*periodic
	tickEnd  []func()

	running atomic.Bool
	cycles  atomic.Uint64
}

// New создаёт Loop с очередью queueSize (<= 0 — DefaultQueueSize).
func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Loop{
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Every регистрирует периодическую задачу. Вызывается до Run.
//
// Parameters:
//   - name: имя задачи для логов
//   - interval: период (> 0)
//   - fn: выполняется в goroutine Run
func (l *Loop) Every(name string, interval time.Duration, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("periodic task %q: interval must be positive, got %s", name, interval)
	}
	if l.running.Load() {
		return fmt.Errorf("periodic task %q: %w", name, ErrRunning)
	}
	l.mu.Lock()
	l.periodic = append(l.periodic, &periodic{name: name, interval: interval, fn: fn})
	l.mu.Unlock()
	return nil
}

// OnTickEnd регистрирует hook, который выполняется после каждой задачи
// (end-of-tick cleanup).
func (l *Loop) OnTickEnd(fn func()) {
	l.mu.Lock()
	l.tickEnd = append(l.tickEnd, fn)
	l.mu.Unlock()
}

// Post ставит задачу в очередь. Блокируется, если очередь заполнена.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Do выполняет fn в goroutine Run и ждёт завершения.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// задача могла успеть выполниться до остановки
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Cycles возвращает количество выполненных задач.
func (l *Loop) Cycles() uint64 {
	return l.cycles.Load()
}

// Run обрабатывает задачи до отмены ctx. Возвращает nil при штатной остановке.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(l.done)

	l.mu.Lock()
	tasks := l.periodic
	hooks := l.tickEnd
	l.mu.Unlock()

	tctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	fire := make(chan *periodic)
	for _, p := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(p.interval)
			defer ticker.Stop()
			for {
				select {
				case <-tctx.Done():
					return
				case <-ticker.C:
					select {
					case fire <- p:
					case <-tctx.Done():
						return
					}
				}
			}
		}()
	}

	slog.Info("game loop started", "periodic", len(tasks), "queue", cap(l.tasks))

	for {
		select {
		case <-ctx.Done():
			l.drain(hooks)
			slog.Info("game loop stopped", "cycles", l.cycles.Load())
			return nil
		case fn := <-l.tasks:
			l.exec("task", fn, hooks)
		case p := <-fire:
			l.exec(p.name, p.fn, hooks)
		}
	}
}

// drain выполняет задачи, уже поставленные в очередь до остановки.
func (l *Loop) drain(hooks []func()) {
	for {
		select {
		case fn := <-l.tasks:
			l.exec("task", fn, hooks)
		default:
			return
		}
	}
}

func (l *Loop) exec(name string, fn func(), hooks []func()) {
	l.safeCall(name, fn)
	for _, h := range hooks {
		l.safeCall("tick end", h)
	}
	l.cycles.Add(1)
}

func (l *Loop) safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("game loop task panicked", "task", name, "panic", r)
		}
	}()
	fn()
}
