package thread

import (
	"strings"
	"testing"
	"time"

	"github.com/oventide/pizzabot/internal/domain"
)

func TestGetOrCreateAllocatesID(t *testing.T) {
	s := NewStore()

	th, created := s.GetOrCreate("")
	if !created {
		t.Fatal("expected a new thread")
	}
	if !strings.HasPrefix(th.ID, "thread_") {
		t.Fatalf("unexpected id: %s", th.ID)
	}

	again, created := s.GetOrCreate(th.ID)
	if created {
		t.Fatal("existing thread must not be re-created")
	}
	if again != th {
		t.Fatal("expected the same thread instance")
	}
}

func TestGetOrCreateUnknownID(t *testing.T) {
	s := NewStore()

	th, created := s.GetOrCreate("thread_missing")
	if !created {
		t.Fatal("unknown id should create a thread")
	}
	if th.ID != "thread_missing" {
		t.Fatalf("client-supplied id must be kept, got %s", th.ID)
	}
}

func TestDelete(t *testing.T) {
	s := NewStore()
	th, _ := s.GetOrCreate("")

	if !s.Delete(th.ID) {
		t.Fatal("first delete should report true")
	}
	if s.Delete(th.ID) {
		t.Fatal("second delete should report false")
	}
	if s.Delete("never-existed") {
		t.Fatal("deleting an unknown id should report false")
	}
}

func TestAppendAndSnapshot(t *testing.T) {
	s := NewStore()
	th, _ := s.GetOrCreate("")

	th.Append(domain.Message{Role: domain.RoleUser, Content: "one"})
	th.Append(domain.Message{Role: domain.RoleAssistant, Content: "two"})

	msgs := th.Messages()
	if len(msgs) != 2 || msgs[0].Content != "one" || msgs[1].Content != "two" {
		t.Fatalf("unexpected snapshot: %+v", msgs)
	}

	// The snapshot is a copy; mutating it must not affect the thread.
	msgs[0].Content = "mutated"
	if th.Messages()[0].Content != "one" {
		t.Fatal("snapshot mutation leaked into the thread")
	}
}

func TestCapacityEvictorDropsLRU(t *testing.T) {
	clock := time.Unix(1000, 0)
	s := NewStore(
		WithEvictor(CapacityEvictor{Max: 2}),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)

	a, _ := s.GetOrCreate("a")
	s.GetOrCreate("b")
	s.GetOrCreate("c")

	if s.Len() != 2 {
		t.Fatalf("expected 2 threads after eviction, got %d", s.Len())
	}
	if _, created := s.GetOrCreate(a.ID); !created {
		t.Fatal("the least recently used thread should have been evicted")
	}
}

func TestNoEvictionKeepsEverything(t *testing.T) {
	s := NewStore()
	for i := 0; i < 50; i++ {
		s.GetOrCreate("")
	}
	if s.Len() != 50 {
		t.Fatalf("expected 50 threads, got %d", s.Len())
	}
}
