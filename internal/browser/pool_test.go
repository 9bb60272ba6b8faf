package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSession builds a session without a live browser process. Tests that
// use it never touch rod; lifecycle paths guard against a nil Browser.
func fakeSession(id string, busy bool) *Session {
	return &Session{
		ID:        id,
		createdAt: time.Now(),
		lastUsed:  time.Now(),
		busy:      busy,
	}
}

func TestNewPoolDefaults(t *testing.T) {
	p := NewPool(Config{}, nil)
	if p.cfg.PoolSize != 1 {
		t.Errorf("pool size = %d, want 1", p.cfg.PoolSize)
	}
	if p.cfg.MaxAge != 30*time.Minute {
		t.Errorf("max age = %v", p.cfg.MaxAge)
	}
	if p.cfg.MaxRequests != 100 {
		t.Errorf("max requests = %d", p.cfg.MaxRequests)
	}
	if p.cfg.IdleTimeout != 5*time.Minute {
		t.Errorf("idle timeout = %v", p.cfg.IdleTimeout)
	}
}

func TestAcquireFromClosedPool(t *testing.T) {
	p := NewPool(Config{PoolSize: 2}, nil)
	p.Close()

	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("err = %v, want ErrPoolClosed", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	p := NewPool(Config{}, nil)
	p.Close()
	p.Close()
}

func TestAcquirePoolSizeCapUnderContention(t *testing.T) {
	p := NewPool(Config{PoolSize: 1}, nil)

	var launches int32
	p.launch = func() (*Session, error) {
		n := atomic.AddInt32(&launches, 1)
		time.Sleep(20 * time.Millisecond) // widen the race window
		return fakeSession(fmt.Sprintf("s%d", n), true), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	var acquired int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Acquire(ctx); err == nil {
				atomic.AddInt32(&acquired, 1)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&launches); n != 1 {
		t.Errorf("launched %d browsers, want 1 (PoolSize cap)", n)
	}
	if n := atomic.LoadInt32(&acquired); n != 1 {
		t.Errorf("%d acquirers succeeded, want 1 (session never released)", n)
	}
	if st := p.Stats(); st.Total != 1 {
		t.Errorf("pool holds %d sessions, want 1: %+v", st.Total, st)
	}
}

func TestAcquireFailedLaunchFreesSlot(t *testing.T) {
	p := NewPool(Config{PoolSize: 1}, nil)

	calls := 0
	p.launch = func() (*Session, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("chromium exploded")
		}
		return fakeSession("recovered", true), nil
	}

	if _, err := p.Acquire(context.Background()); err == nil {
		t.Fatal("first acquire should surface the launch failure")
	}
	s, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second acquire: %v (failed launch must release its reserved slot)", err)
	}
	if s.ID != "recovered" {
		t.Errorf("session = %q", s.ID)
	}
}

func TestAcquireWaitCancelled(t *testing.T) {
	p := NewPool(Config{PoolSize: 1, MaxRequests: 100}, nil)
	p.sessions["busy"] = fakeSession("busy", true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := p.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if st := p.Stats(); st.Waiting != 0 {
		t.Errorf("waiting = %d, cancelled waiter should be removed", st.Waiting)
	}
}

func TestReleaseHandsOffToWaiter(t *testing.T) {
	p := NewPool(Config{PoolSize: 1, MaxRequests: 100, MaxAge: time.Hour}, nil)
	busy := fakeSession("s1", true)
	p.sessions[busy.ID] = busy

	acquired := make(chan *Session, 1)
	go func() {
		s, err := p.Acquire(context.Background())
		if err != nil {
			t.Errorf("Acquire: %v", err)
		}
		acquired <- s
	}()

	// Wait for the acquirer to queue up, then release the busy session.
	deadline := time.Now().Add(time.Second)
	for p.Stats().Waiting == 0 {
		if time.Now().After(deadline) {
			t.Fatal("waiter never queued")
		}
		time.Sleep(time.Millisecond)
	}
	p.Release(busy)

	select {
	case s := <-acquired:
		if s.ID != "s1" {
			t.Errorf("handed off %q, want s1", s.ID)
		}
		if !s.busy {
			t.Error("handed-off session must be marked busy")
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never received the released session")
	}
}

func TestReleaseRecyclesWornSession(t *testing.T) {
	p := NewPool(Config{PoolSize: 1, MaxRequests: 3, MaxAge: time.Hour}, nil)
	s := fakeSession("worn", true)
	s.uses = 2 // release bumps to 3, hitting the limit
	p.sessions[s.ID] = s

	p.Release(s)

	if st := p.Stats(); st.Total != 0 {
		t.Errorf("worn session still pooled: %+v", st)
	}
}

func TestDiscardRemovesSession(t *testing.T) {
	p := NewPool(Config{PoolSize: 2}, nil)
	s := fakeSession("bad", true)
	p.sessions[s.ID] = s

	p.Discard(s)

	if st := p.Stats(); st.Total != 0 {
		t.Errorf("discarded session still pooled: %+v", st)
	}
}

func TestStats(t *testing.T) {
	p := NewPool(Config{PoolSize: 3}, nil)
	p.sessions["a"] = fakeSession("a", true)
	p.sessions["b"] = fakeSession("b", false)

	st := p.Stats()
	if st.Total != 2 || st.InUse != 1 || st.Available != 1 || st.MaxSize != 3 {
		t.Errorf("stats = %+v", st)
	}
}

func TestCloseIdle(t *testing.T) {
	p := NewPool(Config{PoolSize: 2, IdleTimeout: 10 * time.Millisecond}, nil)
	idle := fakeSession("idle", false)
	idle.lastUsed = time.Now().Add(-time.Minute)
	active := fakeSession("active", true)
	p.sessions[idle.ID] = idle
	p.sessions[active.ID] = active

	p.closeIdle()

	if _, ok := p.sessions[idle.ID]; ok {
		t.Error("idle session not closed")
	}
	if _, ok := p.sessions[active.ID]; !ok {
		t.Error("busy session must survive idle cleanup")
	}
}
