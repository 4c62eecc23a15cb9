package watchers

import (
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsIgnored(t *testing.T) {
	cases := []struct {
		p    string
		want bool
	}{
		{"/repo/.git/index.lock", true},
		{"/repo/src/.git", true},
		{"/repo/node_modules/pkg/index.js", true},
		{"/repo/dist/app.js", true},
		{"/repo/build/app", true},
		{"/repo/.cache/tmp", true},
		{"/repo/src/main.go", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isIgnored(tc.p); got != tc.want {
			t.Fatalf("isIgnored(%q)=%v want %v", tc.p, got, tc.want)
		}
	}
}

func TestDebounceCoalescesBursts(t *testing.T) {
	var fired atomic.Int32
	s := New(func(string) { fired.Add(1) })
	s.SetDebounce(20 * time.Millisecond)
	dir := t.TempDir()
	if err := s.Watch(dir); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer s.Stop()

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	for i := 0; i < 5; i++ {
		s.schedule(dir, gen)
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(200 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("burst should emit once, got %d", got)
	}
}

func TestStopCancelsPendingNotification(t *testing.T) {
	var fired atomic.Int32
	s := New(func(string) { fired.Add(1) })
	s.SetDebounce(50 * time.Millisecond)
	dir := t.TempDir()
	if err := s.Watch(dir); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	s.schedule(dir, gen)
	s.Stop()
	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("stopped watcher must not emit, got %d", got)
	}
}

func TestStopSafeWhenIdle(t *testing.T) {
	s := New(nil)
	s.Stop()
	s.Stop()
}

func TestWatchReplacesPreviousSubscription(t *testing.T) {
	s := New(nil)
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	if err := s.Watch(dir1); err != nil {
		t.Fatalf("watch dir1: %v", err)
	}
	if err := s.Watch(dir2); err != nil {
		t.Fatalf("watch dir2: %v", err)
	}
	defer s.Stop()
	s.mu.Lock()
	got := s.path
	s.mu.Unlock()
	if got != dir2 {
		t.Fatalf("active path %q want %q", got, dir2)
	}
}

func TestWatchMissingPathLeavesStopped(t *testing.T) {
	s := New(nil)
	if err := s.Watch(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for missing path")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil || s.path != "" {
		t.Fatalf("watcher should be stopped after failed setup")
	}
}
