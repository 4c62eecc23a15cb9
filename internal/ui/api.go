package ui

import (
	"context"
	"fmt"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/jhleao/teapot-sub006/internal/logging"
)

// API exposes native dialog helpers to the frontend via Wails binding.
type API struct {
	ctxFn func() context.Context
	log   logging.Logger
}

func NewAPI(ctxProvider func() context.Context, logger logging.Logger) *API {
	if logger == nil {
		logger = logging.Nop()
	}
	return &API{ctxFn: ctxProvider, log: logger}
}

// SelectRepositoryDirectory opens the native directory picker.
func (a *API) SelectRepositoryDirectory(defaultDirectory string) (string, error) {
	if a.ctxFn == nil {
		return "", fmt.Errorf("application context not initialised")
	}
	ctx := a.ctxFn()
	if ctx == nil {
		return "", fmt.Errorf("application context not initialised")
	}
	options := wailsruntime.OpenDialogOptions{Title: "Select a git repository"}
	if defaultDirectory != "" {
		options.DefaultDirectory = defaultDirectory
	}
	return wailsruntime.OpenDirectoryDialog(ctx, options)
}
