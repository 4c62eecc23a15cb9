package terminal

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/google/uuid"
	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/jhleao/teapot-sub006/internal/logging"
)

// TerminalTopic is the event channel for one terminal session.
func TerminalTopic(sessionID string) string { return "terminal:" + sessionID }

// Manager runs shell sessions at repository roots and streams their
// output to the frontend.
type Manager struct {
	ctxFn func() context.Context
	log   logging.Logger
	mu    sync.Mutex
	terms map[string]*session
	shell string
}

type session struct {
	id     string
	cmd    *exec.Cmd
	pty    *os.File
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(ctxProvider func() context.Context, shellPath string, logger logging.Logger) *Manager {
	if strings.TrimSpace(shellPath) == "" {
		shellPath = detectShell()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{ctxFn: ctxProvider, log: logger, terms: map[string]*session{}, shell: shellPath}
}

// Start spawns a shell at root and returns the session id.
func (m *Manager) Start(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", fmt.Errorf("repository path is required")
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return "", fmt.Errorf("repository path %q is not a directory", root)
	}

	ctx, cancel := context.WithCancel(context.Background())
	shell := m.shell
	if strings.TrimSpace(shell) == "" {
		shell = defaultShell()
	}
	cmd := exec.CommandContext(ctx, shell, shellArgs(shell)...)
	cmd.Dir = root
	cmd.Env = os.Environ()
	if !envHasKey(cmd.Env, "TERM") {
		cmd.Env = append(cmd.Env, "TERM=xterm-256color")
	}
	ptmx, err := pty.Start(cmd)
	if err != nil {
		cancel()
		return "", fmt.Errorf("start terminal: %w", err)
	}

	s := &session{id: uuid.NewString(), cmd: cmd, pty: ptmx, cancel: cancel, done: make(chan struct{})}
	m.mu.Lock()
	m.terms[s.id] = s
	m.mu.Unlock()
	go m.forward(s)
	m.emitEvent(s.id, "ready", "", "")
	return s.id, nil
}

func (m *Manager) Write(sessionID, data string) error {
	s, ok := m.get(sessionID)
	if !ok {
		return fmt.Errorf("terminal %s not started", sessionID)
	}
	if _, err := s.pty.Write([]byte(data)); err != nil {
		return fmt.Errorf("write terminal: %w", err)
	}
	return nil
}

func (m *Manager) Resize(sessionID string, cols, rows int) error {
	s, ok := m.get(sessionID)
	if !ok {
		return fmt.Errorf("terminal %s not started", sessionID)
	}
	if err := pty.Setsize(s.pty, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)}); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}
	return nil
}

func (m *Manager) Stop(sessionID string) error {
	s, ok := m.get(sessionID)
	if !ok {
		return nil
	}
	s.cancel()
	_ = s.pty.Close()
	<-s.done
	return nil
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	list := make([]*session, 0, len(m.terms))
	for _, s := range m.terms {
		list = append(list, s)
	}
	m.terms = map[string]*session{}
	m.mu.Unlock()
	for _, s := range list {
		if s == nil {
			continue
		}
		s.cancel()
		_ = s.pty.Close()
		<-s.done
	}
}

func (m *Manager) get(sessionID string) (*session, bool) {
	m.mu.Lock()
	s, ok := m.terms[sessionID]
	m.mu.Unlock()
	if !ok || s == nil {
		return nil, false
	}
	return s, true
}

func (m *Manager) forward(s *session) {
	defer func() {
		_ = s.pty.Close()
		_ = s.cmd.Wait()
		close(s.done)
		m.mu.Lock()
		if cur, ok := m.terms[s.id]; ok && cur == s {
			delete(m.terms, s.id)
		}
		m.mu.Unlock()
		status := "exited"
		if s.cmd.ProcessState != nil && !s.cmd.ProcessState.Success() {
			status = fmt.Sprintf("exit:%d", s.cmd.ProcessState.ExitCode())
		}
		m.emitEvent(s.id, "exit", "", status)
	}()
	buf := make([]byte, 4096)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			m.emitEvent(s.id, "output", base64.StdEncoding.EncodeToString(chunk), "")
		}
		if err != nil {
			if !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.EOF) {
				var errno syscall.Errno
				if !(runtime.GOOS != "windows" && errors.As(err, &errno) && errno == syscall.Errno(5)) {
					m.log.Warn("terminal read failed", "session", s.id, "error", err)
				}
			}
			return
		}
	}
}

func (m *Manager) emitEvent(sessionID, typ, data, status string) {
	if m.ctxFn == nil {
		return
	}
	ctx := m.ctxFn()
	if ctx == nil {
		return
	}
	payload := struct {
		SessionID string `json:"sessionId"`
		Type      string `json:"type"`
		Data      string `json:"data,omitempty"`
		Status    string `json:"status,omitempty"`
	}{sessionID, typ, data, status}
	wailsruntime.EventsEmit(ctx, TerminalTopic(sessionID), payload)
}

func shellArgs(shell string) []string {
	switch filepath.Base(shell) {
	case "bash", "zsh", "fish":
		return []string{"-l"}
	case "pwsh", "powershell.exe":
		return []string{"-NoLogo"}
	default:
		return nil
	}
}

func envHasKey(env []string, key string) bool {
	for _, p := range env {
		if strings.HasPrefix(p, key+"=") {
			return true
		}
	}
	return false
}

func detectShell() string {
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	if runtime.GOOS == "windows" {
		if c := os.Getenv("COMSPEC"); c != "" {
			return c
		}
		return "powershell.exe"
	}
	return defaultShell()
}

func defaultShell() string {
	if runtime.GOOS == "windows" {
		return "powershell.exe"
	}
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	return "/bin/sh"
}
