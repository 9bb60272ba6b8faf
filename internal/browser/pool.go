// Package browser manages a pool of headless Chromium sessions used by the
// content extraction stage. Sessions are created lazily, reused across
// scrapes, and torn down deterministically when unhealthy or idle so no OS
// processes leak.
package browser

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrPoolClosed is returned when acquiring from a closed pool.
	ErrPoolClosed = errors.New("browser pool is closed")
)

// Config holds browser pool sizing and lifecycle limits.
type Config struct {
	// PoolSize caps the number of concurrent browser processes.
	PoolSize int
	// MaxAge forces recycling of sessions older than this.
	MaxAge time.Duration
	// MaxRequests forces recycling after this many scrapes.
	MaxRequests int
	// IdleTimeout closes sessions unused for this long.
	IdleTimeout time.Duration
	// ChromePath overrides the auto-downloaded Chromium binary.
	ChromePath string
	// Headless defaults to true; set false only for local debugging.
	Headful bool
}

// Session wraps a rod.Browser with lifecycle metadata. A session belongs to
// exactly one scrape at a time.
type Session struct {
	ID        string
	Browser   *rod.Browser
	createdAt time.Time
	lastUsed  time.Time
	uses      int
	busy      bool
}

// Pool manages browser sessions.
type Pool struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	launching int // slots reserved for in-flight launches, counted against PoolSize
	waiting   []chan *Session
	closed    bool

	cfg    Config
	logger *slog.Logger
	launch func() (*Session, error) // swappable in tests
}

// NewPool creates a browser pool. Sessions are created on demand.
func NewPool(cfg Config, logger *slog.Logger) *Pool {
	if cfg.PoolSize < 1 {
		cfg.PoolSize = 1
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * time.Minute
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		logger:   logger.With("component", "browser_pool"),
	}
	p.launch = p.launchBrowser
	return p
}

// Acquire returns a session, launching a browser if the pool has capacity,
// or blocking until one is released. The context bounds the wait.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	for _, s := range p.sessions {
		if !s.busy && p.healthyLocked(s) {
			s.busy = true
			s.lastUsed = time.Now()
			p.mu.Unlock()
			return s, nil
		}
	}

	// Reserve the slot before unlocking so concurrent acquirers cannot all
	// pass the capacity check and overshoot PoolSize.
	if len(p.sessions)+p.launching < p.cfg.PoolSize {
		p.launching++
		p.mu.Unlock()
		s, err := p.launch()
		p.mu.Lock()
		p.launching--
		if err != nil {
			p.mu.Unlock()
			return nil, err
		}
		if p.closed {
			p.mu.Unlock()
			p.close(s)
			return nil, ErrPoolClosed
		}
		p.sessions[s.ID] = s
		p.mu.Unlock()
		return s, nil
	}

	waitChan := make(chan *Session, 1)
	p.waiting = append(p.waiting, waitChan)
	p.mu.Unlock()

	select {
	case s, ok := <-waitChan:
		if !ok {
			return nil, ErrPoolClosed
		}
		return s, nil
	case <-ctx.Done():
		p.mu.Lock()
		for i, ch := range p.waiting {
			if ch == waitChan {
				p.waiting = append(p.waiting[:i], p.waiting[i+1:]...)
				break
			}
		}
		p.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Release returns a session to the pool, recycling it when it has hit its
// age or request limit.
func (p *Pool) Release(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.close(s)
		return
	}

	s.busy = false
	s.uses++
	s.lastUsed = time.Now()

	if time.Since(s.createdAt) > p.cfg.MaxAge || s.uses >= p.cfg.MaxRequests {
		p.logger.Info("recycling browser session", "id", s.ID, "age", time.Since(s.createdAt), "uses", s.uses)
		p.close(s)
		delete(p.sessions, s.ID)
		p.replaceForWaitersLocked()
		return
	}

	p.handoffLocked(s)
}

// Discard closes a session that failed mid-scrape instead of returning it to
// the pool. The next Acquire launches a fresh browser.
func (p *Pool) Discard(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.close(s)
	delete(p.sessions, s.ID)
	p.replaceForWaitersLocked()
}

// Close shuts down every session and rejects further acquisitions.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	for _, s := range p.sessions {
		p.close(s)
	}
	p.sessions = make(map[string]*Session)

	for _, ch := range p.waiting {
		close(ch)
	}
	p.waiting = nil
}

// Stats contains pool statistics.
type Stats struct {
	Total     int `json:"total"`
	InUse     int `json:"inUse"`
	Available int `json:"available"`
	MaxSize   int `json:"maxSize"`
	Waiting   int `json:"waiting"`
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := Stats{
		Total:   len(p.sessions),
		MaxSize: p.cfg.PoolSize,
		Waiting: len(p.waiting),
	}
	for _, s := range p.sessions {
		if s.busy {
			st.InUse++
		} else {
			st.Available++
		}
	}
	return st
}

// StartCleanup periodically closes idle sessions until ctx is cancelled.
func (p *Pool) StartCleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.closeIdle()
		}
	}
}

func (p *Pool) closeIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	for id, s := range p.sessions {
		if !s.busy && time.Since(s.lastUsed) > p.cfg.IdleTimeout {
			p.logger.Info("closing idle browser session", "id", id, "idle", time.Since(s.lastUsed))
			p.close(s)
			delete(p.sessions, id)
		}
	}
}

// handoffLocked hands a free session to the oldest waiter, if any.
func (p *Pool) handoffLocked(s *Session) {
	if len(p.waiting) == 0 {
		return
	}
	waitChan := p.waiting[0]
	p.waiting = p.waiting[1:]
	s.busy = true
	s.lastUsed = time.Now()
	waitChan <- s
}

// replaceForWaitersLocked launches a replacement session in the background
// when a closed session leaves waiters behind, so they are not stuck until
// an unrelated Release.
func (p *Pool) replaceForWaitersLocked() {
	if len(p.waiting) == 0 {
		return
	}
	p.launching++
	go func() {
		s, err := p.launch()
		p.mu.Lock()
		defer p.mu.Unlock()
		p.launching--
		if err != nil {
			p.logger.Error("failed to launch replacement browser", "error", err)
			return
		}
		if p.closed {
			p.close(s)
			return
		}
		p.sessions[s.ID] = s
		s.busy = false
		p.handoffLocked(s)
	}()
}

func (p *Pool) launchBrowser() (*Session, error) {
	l := launcher.New()
	if p.cfg.ChromePath != "" {
		l = l.Bin(p.cfg.ChromePath)
	}
	l = l.
		Headless(!p.cfg.Headful).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-extensions").
		Set("disable-background-networking").
		Set("window-size", "1920,1080").
		Set("lang", "en-US,en")

	u, err := l.Launch()
	if err != nil {
		return nil, err
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, err
	}

	s := &Session{
		ID:        ulid.Make().String(),
		Browser:   b,
		createdAt: time.Now(),
		lastUsed:  time.Now(),
		busy:      true,
	}
	p.logger.Info("browser session launched", "id", s.ID)
	return s, nil
}

func (p *Pool) healthyLocked(s *Session) bool {
	if time.Since(s.createdAt) > p.cfg.MaxAge {
		return false
	}
	if s.uses >= p.cfg.MaxRequests {
		return false
	}
	_, err := s.Browser.Pages()
	return err == nil
}

func (p *Pool) close(s *Session) {
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			p.logger.Warn("error closing browser session", "id", s.ID, "error", err)
		}
	}
}
