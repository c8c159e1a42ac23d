package core

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrNotLoaded is returned before the first successful load.
var ErrNotLoaded = errors.New("site not loaded yet")

// App holds the application state shared by every request: the latest
// Snapshot and the error of the latest failed load, if any.
type App struct {
	loader  *Loader
	current atomic.Pointer[Snapshot]
	lastErr atomic.Pointer[error]
}

// NewApp creates an App with no snapshot.
func NewApp(l *Loader) *App {
	return &App{loader: l}
}

// Loader returns the loader behind Refresh.
func (a *App) Loader() *Loader { return a.loader }

// Snapshot returns the current snapshot, or ErrNotLoaded (joined with the
// last load error, if any) before the first successful load.
func (a *App) Snapshot() (*Snapshot, error) {
	if s := a.current.Load(); s != nil {
		return s, nil
	}
	if err := a.LastError(); err != nil {
		return nil, errors.Join(ErrNotLoaded, err)
	}
	return nil, ErrNotLoaded
}

// LastError returns the error of the most recent load, or nil if it succeeded.
func (a *App) LastError() error {
	if p := a.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Refresh loads both sheets and swaps in the new snapshot. On failure the
// previous snapshot stays in place.
func (a *App) Refresh(ctx context.Context) (*Snapshot, error) {
	snap, err := a.loader.Load(ctx)
	if err != nil {
		// A caller that gave up says nothing about the sheets.
		if ctx.Err() == nil {
			a.lastErr.Store(&err)
		}
		return nil, err
	}
	a.current.Store(snap)
	a.lastErr.Store(nil)
	return snap, nil
}

// Set installs a snapshot directly.
func (a *App) Set(s *Snapshot) {
	a.current.Store(s)
	a.lastErr.Store(nil)
}
