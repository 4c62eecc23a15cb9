package watchers

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jhleao/teapot-sub006/internal/logging"
)

// Service watches one repository working directory and emits a debounced
// change notification after filesystem events go quiet. At most one
// subscription is active per instance; watching a new path implicitly
// stops the previous one.
type Service struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	timer    *time.Timer
	path     string
	gen      int // invalidates observe loops and timers of stale subscriptions
	onChange func(path string)
	logger   logging.Logger
	debounce time.Duration
}

func New(onChange func(path string)) *Service {
	return &Service{onChange: onChange, logger: logging.Nop(), debounce: 200 * time.Millisecond}
}

func (s *Service) SetEmitter(fn func(path string)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Service) SetLogger(l logging.Logger) {
	s.mu.Lock()
	if l != nil {
		s.logger = l
	}
	s.mu.Unlock()
}

func (s *Service) SetDebounce(d time.Duration) {
	s.mu.Lock()
	if d > 0 {
		s.debounce = d
	}
	s.mu.Unlock()
}

// Watch starts observing path, replacing any active subscription. Setup
// failure leaves the service stopped.
func (s *Service) Watch(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return os.ErrInvalid
	}
	s.Stop()
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		if err == nil {
			err = os.ErrInvalid
		}
		s.logger.Error("watch path unusable", "path", path, "error", err)
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Error("watcher create failed", "path", path, "error", err)
		return err
	}
	s.mu.Lock()
	s.watcher = watcher
	s.path = path
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	if err := addRecursive(watcher, path); err != nil {
		s.logger.Warn("watcher setup error", "path", path, "error", err)
	}
	go s.observe(watcher, path, gen)
	return nil
}

// Stop cancels any pending debounce timer and releases the filesystem
// handle. Safe to call when not watching.
func (s *Service) Stop() {
	s.mu.Lock()
	timer := s.timer
	watcher := s.watcher
	s.timer = nil
	s.watcher = nil
	s.path = ""
	s.gen++
	s.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
	if watcher != nil {
		_ = watcher.Close()
	}
}

func (s *Service) observe(w *fsnotify.Watcher, path string, gen int) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if isIgnored(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addRecursive(w, ev.Name)
				}
			}
			s.schedule(path, gen)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("watcher error", "path", path, "error", err)
		}
	}
}

// schedule arms the debounce timer, resetting a pending one so a burst of
// events produces a single notification once the window passes quiet.
func (s *Service) schedule(path string, gen int) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	delay := s.debounce
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		emit := s.onChange
		live := gen == s.gen
		if cur := s.timer; cur == t {
			s.timer = nil
		}
		s.mu.Unlock()
		// The consumer may have gone away; emitting becomes a no-op.
		if live && emit != nil {
			emit(path)
		}
	})
	s.timer = t
	s.mu.Unlock()
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		_ = w.Add(path)
		return nil
	})
}

func isIgnored(path string) bool {
	if path == "" {
		return false
	}
	sep := string(filepath.Separator)
	for _, dir := range []string{".git", "node_modules", "dist", "build", ".cache"} {
		if strings.Contains(path, sep+dir+sep) {
			return true
		}
	}
	switch filepath.Base(path) {
	case ".git", "node_modules", "dist", "build", ".cache":
		return true
	}
	return false
}
