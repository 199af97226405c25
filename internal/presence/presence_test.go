package presence

import (
	"sort"
	"sync"
	"testing"
)

func TestJoin_Idempotent(t *testing.T) {
	tr := NewTracker()
	tr.Join("alice")
	tr.Join("alice")
	if got := tr.Snapshot(); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("unexpected roster: %v", got)
	}
}

func TestLeave_AbsentIsNoop(t *testing.T) {
	tr := NewTracker()
	tr.Leave("ghost")
	tr.Join("alice")
	tr.Leave("alice")
	if got := tr.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty roster, got %v", got)
	}
}

func TestRename(t *testing.T) {
	tr := NewTracker()
	tr.Join("alice")
	tr.Join("bob")
	tr.Rename("alice", "carol")

	got := tr.Snapshot()
	sort.Strings(got)
	if len(got) != 2 || got[0] != "bob" || got[1] != "carol" {
		t.Fatalf("unexpected roster after rename: %v", got)
	}

	// same-name rename must not drop the entry
	tr.Rename("bob", "bob")
	if got := tr.Snapshot(); len(got) != 2 {
		t.Fatalf("same-name rename changed roster: %v", got)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	tr := NewTracker()
	tr.Join("alice")
	snap := tr.Snapshot()
	snap[0] = "mutated"
	if got := tr.Snapshot(); got[0] != "alice" {
		t.Fatalf("snapshot aliases internal state: %v", got)
	}
}

func TestConcurrentMutation(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tr.Join("user")
			tr.Snapshot()
			tr.Rename("user", "user2")
			tr.Leave("user2")
		}(i)
	}
	wg.Wait()
}
