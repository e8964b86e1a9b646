// Package thread holds conversation threads for the lifetime of the
// process. Threads are never persisted; a restart starts empty.
package thread

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oventide/pizzabot/internal/domain"
)

// Thread is the ordered message history backing one conversation.
type Thread struct {
	ID string

	mu       sync.Mutex
	messages []domain.Message
	lastUsed time.Time
}

// Append adds a message to the end of the thread. Messages are
// immutable after this point.
func (t *Thread) Append(msg domain.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// Messages returns a snapshot of the thread history in conversation
// order.
func (t *Thread) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages in the thread.
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Evictor decides which thread, if any, to drop when a new thread is
// created. The default keeps everything; unbounded growth is the
// documented behavior of the store.
type Evictor interface {
	// Evict returns the id of a thread to remove, or "" to keep all.
	Evict(threads map[string]*Thread) string
}

// NoEviction keeps every thread until it is explicitly deleted.
type NoEviction struct{}

func (NoEviction) Evict(map[string]*Thread) string { return "" }

// CapacityEvictor drops the least recently used thread once the store
// holds more than Max threads.
type CapacityEvictor struct {
	Max int
}

func (e CapacityEvictor) Evict(threads map[string]*Thread) string {
	if e.Max <= 0 || len(threads) <= e.Max {
		return ""
	}
	var oldest string
	var oldestAt time.Time
	for id, t := range threads {
		t.mu.Lock()
		at := t.lastUsed
		t.mu.Unlock()
		if oldest == "" || at.Before(oldestAt) {
			oldest = id
			oldestAt = at
		}
	}
	return oldest
}

// Store is the process-wide registry of conversation threads.
type Store struct {
	mu      sync.Mutex
	threads map[string]*Thread
	evictor Evictor
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithEvictor installs an eviction strategy.
func WithEvictor(e Evictor) Option {
	return func(s *Store) { s.evictor = e }
}

// WithClock injects the time source used for recency tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty thread store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		threads: make(map[string]*Thread),
		evictor: NoEviction{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the thread with the given id, creating it if the
// id is empty or unknown. The second return reports whether a new
// thread was allocated.
func (s *Store) GetOrCreate(id string) (*Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if t, ok := s.threads[id]; ok {
			t.mu.Lock()
			t.lastUsed = s.now()
			t.mu.Unlock()
			return t, false
		}
	}

	if id == "" {
		id = "thread_" + uuid.New().String()[:8]
	}
	t := &Thread{ID: id, lastUsed: s.now()}
	s.threads[id] = t

	if victim := s.evictor.Evict(s.threads); victim != "" && victim != id {
		delete(s.threads, victim)
	}
	return t, true
}

// Delete removes a thread, reporting whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[id]; !ok {
		return false
	}
	delete(s.threads, id)
	return true
}

// Len returns the number of live threads.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.threads)
}
