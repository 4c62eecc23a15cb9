package staging

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jhleao/teapot-sub006/internal/git/client"
)

type fakeGit struct {
	head    bool
	added   [][]string
	reset   [][]string
	removed [][]string
}

func (f *fakeGit) ListBranches(ctx context.Context, root string) ([]client.BranchRecord, error) {
	return nil, nil
}
func (f *fakeGit) Log(ctx context.Context, root, ref string) ([]client.CommitRecord, error) {
	return nil, nil
}
func (f *fakeGit) RemoteHead(ctx context.Context, root string) (string, error)      { return "", nil }
func (f *fakeGit) ResolveRef(ctx context.Context, root, ref string) (string, error) { return "", nil }
func (f *fakeGit) HeadExists(ctx context.Context, root string) bool                 { return f.head }
func (f *fakeGit) Status(ctx context.Context, root string) (client.StatusRecord, error) {
	return client.StatusRecord{}, nil
}
func (f *fakeGit) Add(ctx context.Context, root string, paths []string) error {
	f.added = append(f.added, paths)
	return nil
}
func (f *fakeGit) ResetIndex(ctx context.Context, root string, paths []string) error {
	f.reset = append(f.reset, paths)
	return nil
}
func (f *fakeGit) RemoveCached(ctx context.Context, root string, paths []string) error {
	f.removed = append(f.removed, paths)
	return nil
}
func (f *fakeGit) RepoRoot(ctx context.Context, path string) (string, error) { return path, nil }
func (f *fakeGit) IsRepoPath(ctx context.Context, path string) (bool, error) { return true, nil }

func TestSetStagedAdds(t *testing.T) {
	fake := &fakeGit{head: true}
	c := NewController(fake, nil)
	if err := c.SetStaged(context.Background(), "/repo", []string{"a.txt"}, true); err != nil {
		t.Fatalf("SetStaged: %v", err)
	}
	if len(fake.added) != 1 || len(fake.reset) != 0 || len(fake.removed) != 0 {
		t.Fatalf("expected a single add call: %+v", fake)
	}
}

func TestUnstageWithHeadResetsIndex(t *testing.T) {
	fake := &fakeGit{head: true}
	c := NewController(fake, nil)
	if err := c.SetStaged(context.Background(), "/repo", []string{"a.txt"}, false); err != nil {
		t.Fatalf("SetStaged: %v", err)
	}
	if len(fake.reset) != 1 || len(fake.removed) != 0 {
		t.Fatalf("expected reset, not remove: %+v", fake)
	}
}

func TestUnstageWithoutHeadRemovesFromIndex(t *testing.T) {
	fake := &fakeGit{head: false}
	c := NewController(fake, nil)
	if err := c.SetStaged(context.Background(), "/repo", []string{"a.txt", "b.txt"}, false); err != nil {
		t.Fatalf("SetStaged: %v", err)
	}
	if len(fake.removed) != 1 || len(fake.reset) != 0 {
		t.Fatalf("expected remove-from-index before the initial commit: %+v", fake)
	}
}

func TestSetStagedNoPathsIsNoop(t *testing.T) {
	fake := &fakeGit{head: true}
	c := NewController(fake, nil)
	if err := c.SetStaged(context.Background(), "/repo", nil, true); err != nil {
		t.Fatalf("SetStaged: %v", err)
	}
	if len(fake.added) != 0 {
		t.Fatalf("no paths should mean no backend call")
	}
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in PATH")
	}
}

func TestUnstageWithoutHeadAgainstRealGit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	run := func(args ...string) string {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, string(out))
		}
		return string(out)
	}
	run("init")
	run("config", "user.email", "you@example.com")
	run("config", "user.name", "Your Name")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("new\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	run("add", "a.txt")

	c := NewController(client.NewExecClient(""), nil)
	if err := c.SetStaged(context.Background(), dir, []string{"a.txt"}, false); err != nil {
		t.Fatalf("unstage on zero-commit repo: %v", err)
	}
	if out := strings.TrimSpace(run("status", "--porcelain")); out != "?? a.txt" {
		t.Fatalf("expected a.txt back to untracked, got %q", out)
	}
}
