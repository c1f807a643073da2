// Package network рассылает события ядра коллаборатором.
package network

import (
	"sync"
	"sync/atomic"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
)

// Subscriber — один подписчик шины событий с ограниченным кольцом.
// Переполнение НЕ блокирует издателя: старейшее событие выталкивается,
// счетчик потерь растет. Порядок доставки — FIFO издателя.
type Subscriber struct {
	ID   string
	Role string

	mu      sync.Mutex
	ring    []api.CoreEvent
	head    int // индекс старейшего
	size    int
	notify  chan struct{}
	dropped atomic.Uint64
	closed  bool
}

// Events сигналит о появлении событий. Получатель вычитывает пачку
// через Drain.
func (s *Subscriber) Events() <-chan struct{} {
	return s.notify
}

// Drain забирает накопленные события в порядке публикации.
func (s *Subscriber) Drain() []api.CoreEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.size == 0 {
		return nil
	}
	out := make([]api.CoreEvent, s.size)
	for i := 0; i < s.size; i++ {
		out[i] = s.ring[(s.head+i)%len(s.ring)]
	}
	s.head = 0
	s.size = 0
	return out
}

// Dropped возвращает число событий, вытолкнутых переполнением.
func (s *Subscriber) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Subscriber) push(ev api.CoreEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.size == len(s.ring) {
		// Кольцо полно: выталкиваем старейшее.
		s.head = (s.head + 1) % len(s.ring)
		s.size--
		s.dropped.Add(1)
	}
	s.ring[(s.head+s.size)%len(s.ring)] = ev
	s.size++
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Broadcaster раздает события ядра подписчикам. Доставка внутри
// подписчика идет в порядке публикации; между подписчиками — в порядке
// их регистрации.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber
	order       []string // порядок регистрации
	queueDepth  int
}

// NewBroadcaster создает шину с глубиной кольца queueDepth на подписчика.
func NewBroadcaster(queueDepth int) *Broadcaster {
	if queueDepth <= 0 {
		queueDepth = 1024
	}
	return &Broadcaster{
		subscribers: make(map[string]*Subscriber),
		queueDepth:  queueDepth,
	}
}

// Register создает подписчика. Повторная регистрация того же id
// закрывает старого подписчика.
func (b *Broadcaster) Register(id, role string) *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[id]; ok {
		old.close()
		b.removeFromOrder(id)
	}

	sub := &Subscriber{
		ID:     id,
		Role:   role,
		ring:   make([]api.CoreEvent, b.queueDepth),
		notify: make(chan struct{}, 1),
	}
	b.subscribers[id] = sub
	b.order = append(b.order, id)
	return sub
}

// Unregister удаляет подписчика.
func (b *Broadcaster) Unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		sub.close()
		delete(b.subscribers, id)
		b.removeFromOrder(id)
	}
}

func (b *Broadcaster) removeFromOrder(id string) {
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			return
		}
	}
}

func (s *Subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Broadcast доставляет событие всем подписчикам в порядке регистрации.
func (b *Broadcaster) Broadcast(ev api.CoreEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, id := range b.order {
		b.subscribers[id].push(ev)
	}
}

// SendTo доставляет событие одному подписчику.
func (b *Broadcaster) SendTo(id string, ev api.CoreEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if sub, ok := b.subscribers[id]; ok {
		sub.push(ev)
	}
}

// HasSubscriber проверяет наличие подписчика.
func (b *Broadcaster) HasSubscriber(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[id]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// DroppedTotal суммирует потери по всем подписчикам (диагностика).
func (b *Broadcaster) DroppedTotal() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var total uint64
	for _, sub := range b.subscribers {
		total += sub.Dropped()
	}
	return total
}
