package store

import (
	"context"
	"sync"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func entry(id string) *Entry {
	return &Entry{ID: id, Name: id + ".csv"}
}

func TestKey_Deterministic(t *testing.T) {
	a := Key([]byte("tiempo inicio,tiempo final\n"))
	b := Key([]byte("tiempo inicio,tiempo final\n"))
	c := Key([]byte("tiempo inicio,tiempo final\r\n"))
	if a != b {
		t.Errorf("Key: identical input gave %q and %q", a, b)
	}
	if a == c {
		t.Error("Key: different input gave the same key")
	}
	if len(a) != 64 {
		t.Errorf("Key length: got %d, want 64", len(a))
	}
}

func TestPutGet(t *testing.T) {
	st := New(5 * time.Minute)
	st.Put(entry("abc"))

	got, ok := st.Get("abc")
	if !ok {
		t.Fatal("Get: entry not found")
	}
	if got.Name != "abc.csv" {
		t.Errorf("Name: got %q, want abc.csv", got.Name)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
}

func TestGet_Missing(t *testing.T) {
	st := New(5 * time.Minute)
	if _, ok := st.Get("nope"); ok {
		t.Error("Get on empty store returned ok")
	}
}

func TestGet_Stale(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(entry("old"))

	st.now = fixedClock(base)
	if _, ok := st.Get("old"); ok {
		t.Error("Get returned a stale entry")
	}
}

func TestPut_RefreshesStale(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(entry("again"))

	st.now = fixedClock(base)
	st.Put(entry("again"))

	if _, ok := st.Get("again"); !ok {
		t.Error("re-put entry should be live")
	}
	if st.Count() != 1 {
		t.Errorf("Count: got %d, want 1", st.Count())
	}
}

func TestList_FiltersStaleNewestFirst(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(entry("stale"))

	st.now = fixedClock(base.Add(-2 * time.Minute))
	st.Put(entry("older"))

	st.now = fixedClock(base.Add(-1 * time.Minute))
	st.Put(entry("newer"))

	st.now = fixedClock(base)
	got := st.List()
	if len(got) != 2 {
		t.Fatalf("List: got %d entries, want 2", len(got))
	}
	if got[0].ID != "newer" || got[1].ID != "older" {
		t.Errorf("List order: got %s, %s; want newer, older", got[0].ID, got[1].ID)
	}

	// Count includes the stale entry; it has not been evicted yet.
	if n := st.Count(); n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
}

func TestEvict_RemovesStale(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(entry("old1"))
	st.Put(entry("old2"))

	st.now = fixedClock(base)
	st.Put(entry("live"))

	removed := st.Evict(base)
	if removed != 2 {
		t.Errorf("Evict: removed %d, want 2", removed)
	}
	if st.Count() != 1 {
		t.Errorf("Count after evict: got %d, want 1", st.Count())
	}
}

func TestEvict_NoOp_AllLive(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base)
	st.Put(entry("src"))

	if removed := st.Evict(base); removed != 0 {
		t.Errorf("Evict on live entry: removed %d, want 0", removed)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	st := New(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConcurrentPuts(t *testing.T) {
	st := New(5 * time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Put(entry("concurrent"))
		}()
	}
	wg.Wait()

	if st.Count() != 1 {
		t.Errorf("Count after concurrent puts: got %d, want 1", st.Count())
	}
}

func TestConcurrentMixedOps(t *testing.T) {
	st := New(5 * time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			st.Put(entry("src-a"))
		}()
		go func() {
			defer wg.Done()
			st.List()
		}()
	}
	wg.Wait()
}
