package dialog

import (
	"context"
	"sync"
	"time"

	"github.com/Spok95/paintstock-bot/internal/pkg/clock"
)

// Store держит сессии в памяти процесса. Сессия, не обновлявшаяся дольше ttl,
// считается брошенной: Get возвращает idle, Sweep удаляет её.
type Store struct {
	mu    sync.Mutex
	items map[int64]Session
	ttl   time.Duration
	clock clock.Clock
}

func NewStore(ttl time.Duration, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Store{items: map[int64]Session{}, ttl: ttl, clock: clk}
}

func (s *Store) Get(chatID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[chatID]
	if !ok {
		return Session{ChatID: chatID, State: StateIdle}
	}
	if s.expired(it, s.clock.Now()) {
		delete(s.items, chatID)
		return Session{ChatID: chatID, State: StateIdle}
	}
	return it
}

func (s *Store) Set(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.Idle() {
		delete(s.items, sess.ChatID)
		return
	}
	sess.UpdatedAt = s.clock.Now()
	s.items[sess.ChatID] = sess
}

func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	delete(s.items, chatID)
	s.mu.Unlock()
}

// Sweep удаляет просроченные сессии и возвращает, сколько удалено.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	n := 0
	for id, it := range s.items {
		if s.expired(it, now) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// RunJanitor периодически вызывает Sweep до отмены ctx. onSweep получает
// число оставшихся сессий (для метрик), может быть nil.
func (s *Store) RunJanitor(ctx context.Context, every time.Duration, onSweep func(active int)) error {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Sweep()
			if onSweep != nil {
				onSweep(s.Len())
			}
		}
	}
}

func (s *Store) expired(it Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(it.UpdatedAt) > s.ttl
}
