package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrEngineStopped      = errors.New("scheduler: engine stopped")
)

// Alarm is a one-shot wake-up keyed by Slot. Name is the payload handed to
// whoever consumes C when the alarm fires.
type Alarm struct {
	Slot   int
	FireAt time.Time
	Name   string
}

// Journal persists pending alarms. DeleteAlarm must only remove the slot
// while it still holds the given alarm.
type Journal interface {
	PutAlarm(ctx context.Context, a Alarm) error
	DeleteAlarm(ctx context.Context, a Alarm) error
	ListAlarms(ctx context.Context) ([]Alarm, error)
}

type queueItem struct {
	alarm Alarm
	index int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].alarm.FireAt.Before(pq[j].alarm.FireAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

type Option func(*Engine)

func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.log = l }
}

type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	slots   map[int]*queueItem
	journal Journal
	log     *log.Logger
	out     chan Alarm
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int, opts ...Option) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	e := &Engine{
		queue:  make(priorityQueue, 0),
		slots:  make(map[int]*queueItem),
		out:    make(chan Alarm, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// C delivers fired alarms. It is closed when the engine stops.
func (e *Engine) C() <-chan Alarm {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	started := e.started
	e.mu.Unlock()
	if started {
		<-e.doneCh
		return
	}
	close(e.out)
}

// Schedule arms a in its slot, replacing whatever alarm the slot held. An
// alarm already in the past fires on the next loop pass.
func (e *Engine) Schedule(ctx context.Context, a Alarm) error {
	if a.FireAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}

	e.pushLocked(a)
	if e.journal != nil {
		if err := e.journal.PutAlarm(ctx, a); err != nil {
			e.logf("[WARN] journal alarm slot %d: %v", a.Slot, err)
		}
	}
	e.signalWakeup()
	return nil
}

// Cancel disarms the slot and reports whether an alarm was pending there.
func (e *Engine) Cancel(ctx context.Context, slot int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.slots[slot]
	if !ok {
		return false
	}
	heap.Remove(&e.queue, item.index)
	delete(e.slots, slot)
	if e.journal != nil {
		if err := e.journal.DeleteAlarm(ctx, item.alarm); err != nil {
			e.logf("[DEBUG] drop journaled alarm slot %d: %v", slot, err)
		}
	}
	e.signalWakeup()
	return true
}

// Restore re-arms every alarm found in the journal.
func (e *Engine) Restore(ctx context.Context) (int, error) {
	if e.journal == nil {
		return 0, nil
	}
	alarms, err := e.journal.ListAlarms(ctx)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return 0, ErrEngineStopped
	}
	for _, a := range alarms {
		if a.FireAt.IsZero() {
			continue
		}
		e.pushLocked(a)
	}
	e.signalWakeup()
	return len(alarms), nil
}

// Pending returns the armed alarms ordered by fire time.
func (e *Engine) Pending() []Alarm {
	e.mu.Lock()
	out := make([]Alarm, 0, len(e.queue))
	for _, item := range e.queue {
		out = append(out, item.alarm)
	}
	e.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) pushLocked(a Alarm) {
	if existing, ok := e.slots[a.Slot]; ok {
		existing.alarm = a
		heap.Fix(&e.queue, existing.index)
		return
	}
	item := &queueItem{alarm: a}
	heap.Push(&e.queue, item)
	e.slots[a.Slot] = item
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.FireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now())
			for _, a := range due {
				select {
				case e.out <- a:
				default:
					atomic.AddUint64(&e.dropped, 1)
					e.logf("[ERROR] dropped fired alarm slot %d (%s): consumer is behind", a.Slot, a.Name)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Alarm, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return Alarm{}, false
	}
	return e.queue[0].alarm, true
}

func (e *Engine) popDue(now time.Time) []Alarm {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Alarm, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].alarm
		if next.FireAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(*queueItem)
		delete(e.slots, item.alarm.Slot)
		if e.journal != nil {
			if err := e.journal.DeleteAlarm(context.Background(), item.alarm); err != nil {
				e.logf("[WARN] clear fired alarm slot %d from journal: %v", item.alarm.Slot, err)
			}
		}
		out = append(out, item.alarm)
	}
	return out
}

func (e *Engine) logf(format string, args ...any) {
	if e.log != nil {
		e.log.Printf(format, args...)
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
