package guard

import (
	"context"
	"sync"
)

// Progress is a navigation progress indicator. Start may be called several
// times before the matching Done when a navigation is redirected.
type Progress interface {
	Start()
	Done()
}

// Common tracks visited pages and drives the progress indicator. Register
// Before as a guard and After as an after hook.
type Common struct {
	progress Progress

	mu     sync.RWMutex
	loaded map[string]struct{}
}

// NewCommon creates the common guard. A nil progress disables the
// indicator.
func NewCommon(progress Progress) *Common {
	return &Common{
		progress: progress,
		loaded:   make(map[string]struct{}),
	}
}

// Before marks the target as loaded when it was visited before and starts
// the indicator for first visits.
func (c *Common) Before(_ context.Context, to *Location, _ Location) (Decision, error) {
	c.mu.RLock()
	_, seen := c.loaded[to.Path]
	c.mu.RUnlock()

	to.Loaded = seen
	if !seen && c.progress != nil {
		c.progress.Start()
	}
	return Allow(), nil
}

// After records the settled location and stops the indicator.
func (c *Common) After(to, _ Location, err error) {
	if err == nil && to.Path != "" {
		c.mu.Lock()
		c.loaded[to.Path] = struct{}{}
		c.mu.Unlock()
	}
	if c.progress != nil {
		c.progress.Done()
	}
}
