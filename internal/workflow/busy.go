package workflow

import "sync"

// Busy counts outstanding guards. Input stays disabled while any guard is held, so a lookup
// and a submission can overlap without one re-enabling input under the other.
type Busy struct {
	mu     sync.Mutex
	scopes map[string]int
	count  int
}

func NewBusy() *Busy {
	return &Busy{scopes: make(map[string]int)}
}

// Acquire takes a guard for scope. The guard must be released exactly once; extra releases
// are ignored.
func (b *Busy) Acquire(scope string) *Guard {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count++
	b.scopes[scope]++
	return &Guard{busy: b, scope: scope}
}

// Held reports whether any guard is outstanding.
func (b *Busy) Held() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count > 0
}

// HeldBy reports how many guards scope currently holds.
func (b *Busy) HeldBy(scope string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scopes[scope]
}

func (b *Busy) release(scope string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count--
	b.scopes[scope]--
	if b.scopes[scope] == 0 {
		delete(b.scopes, scope)
	}
}

// Guard is one scoped hold on a Busy.
type Guard struct {
	busy  *Busy
	scope string
	once  sync.Once
}

// Release gives the hold back. It is safe on a nil guard and safe to call twice.
func (g *Guard) Release() {
	if g == nil {
		return
	}
	g.once.Do(func() { g.busy.release(g.scope) })
}
