package main

import (
	"context"
	"sync"
)

// App holds the Wails lifecycle context so bound services can emit events.
type App struct {
	mu  sync.RWMutex
	ctx context.Context
}

func NewApp() *App { return &App{} }

// startup is called when the app starts; the context is kept for runtime
// calls (events, dialogs).
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()
}

// Context returns the runtime context, nil before startup.
func (a *App) Context() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.ctx
}
