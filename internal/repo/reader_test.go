package repo

import (
	"context"
	"testing"

	"github.com/jhleao/teapot-sub006/internal/git/client"
)

type fakeGit struct {
	branches   []client.BranchRecord
	logs       map[string][]client.CommitRecord
	remoteHead string
	status     client.StatusRecord
}

func (f *fakeGit) ListBranches(ctx context.Context, root string) ([]client.BranchRecord, error) {
	return f.branches, nil
}

func (f *fakeGit) Log(ctx context.Context, root, ref string) ([]client.CommitRecord, error) {
	return f.logs[ref], nil
}

func (f *fakeGit) RemoteHead(ctx context.Context, root string) (string, error) {
	return f.remoteHead, nil
}

func (f *fakeGit) ResolveRef(ctx context.Context, root, ref string) (string, error) { return "", nil }
func (f *fakeGit) HeadExists(ctx context.Context, root string) bool                 { return true }
func (f *fakeGit) Status(ctx context.Context, root string) (client.StatusRecord, error) {
	return f.status, nil
}
func (f *fakeGit) Add(ctx context.Context, root string, paths []string) error          { return nil }
func (f *fakeGit) ResetIndex(ctx context.Context, root string, paths []string) error   { return nil }
func (f *fakeGit) RemoveCached(ctx context.Context, root string, paths []string) error { return nil }
func (f *fakeGit) RepoRoot(ctx context.Context, path string) (string, error)           { return path, nil }
func (f *fakeGit) IsRepoPath(ctx context.Context, path string) (bool, error)           { return true, nil }

func TestReadInvertsChildren(t *testing.T) {
	fake := &fakeGit{
		branches: []client.BranchRecord{
			{Ref: "main", HeadSHA: "c3"},
			{Ref: "feature", HeadSHA: "c2b"},
		},
		logs: map[string][]client.CommitRecord{
			"main": {
				{SHA: "c3", ParentSHA: "c2", TimeMs: 3000, Message: "three"},
				{SHA: "c2", ParentSHA: "c1", TimeMs: 2000, Message: "two"},
				{SHA: "c1", TimeMs: 1000, Message: "one"},
			},
			"feature": {
				{SHA: "c2b", ParentSHA: "c1", TimeMs: 2500, Message: "side"},
				{SHA: "c1", TimeMs: 1000, Message: "one"},
			},
		},
	}
	snap, err := NewReader(fake, nil).Read(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(snap.Commits) != 4 {
		t.Fatalf("expected 4 deduplicated commits, got %d", len(snap.Commits))
	}
	ix := NewIndex(snap)
	c1, ok := ix.Commit("c1")
	if !ok {
		t.Fatalf("c1 missing")
	}
	if len(c1.ChildrenSHA) != 2 || c1.ChildrenSHA[0] != "c2" || c1.ChildrenSHA[1] != "c2b" {
		t.Fatalf("children of c1 not stable discovery order: %v", c1.ChildrenSHA)
	}
	c2, _ := ix.Commit("c2")
	if len(c2.ChildrenSHA) != 1 || c2.ChildrenSHA[0] != "c3" {
		t.Fatalf("children of c2: %v", c2.ChildrenSHA)
	}
	if snap.ID == "" {
		t.Fatalf("snapshot id not assigned")
	}
}

func TestReadDanglingParentIsTolerated(t *testing.T) {
	fake := &fakeGit{
		branches: []client.BranchRecord{{Ref: "main", HeadSHA: "c2"}},
		logs: map[string][]client.CommitRecord{
			// Shallow fetch: the parent commit is absent from the log.
			"main": {{SHA: "c2", ParentSHA: "c1", TimeMs: 2000, Message: "tip"}},
		},
	}
	snap, err := NewReader(fake, nil).Read(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(snap.Commits) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(snap.Commits))
	}
	if snap.Commits[0].ParentSHA != "c1" {
		t.Fatalf("dangling parent reference should be preserved")
	}
	if len(snap.Commits[0].ChildrenSHA) != 0 {
		t.Fatalf("no children expected")
	}
}

func TestReadMarksTrunkPair(t *testing.T) {
	fake := &fakeGit{
		branches: []client.BranchRecord{
			{Ref: "main", HeadSHA: "a"},
			{Ref: "origin/main", HeadSHA: "b", IsRemote: true},
			{Ref: "feature", HeadSHA: "c"},
		},
		logs: map[string][]client.CommitRecord{
			"main":        {{SHA: "a", TimeMs: 1}},
			"origin/main": {{SHA: "b", TimeMs: 2}},
			"feature":     {{SHA: "c", TimeMs: 3}},
		},
	}
	snap, err := NewReader(fake, nil).Read(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	trunks := 0
	for _, b := range snap.Branches {
		if b.IsTrunk {
			trunks++
			if b.LocalName() != "main" {
				t.Fatalf("unexpected trunk branch %q", b.Ref)
			}
		}
	}
	if trunks != 2 {
		t.Fatalf("expected the local/remote trunk pair marked, got %d", trunks)
	}
}

func TestReadEmptyRepository(t *testing.T) {
	fake := &fakeGit{status: client.StatusRecord{Branch: "main"}}
	snap, err := NewReader(fake, nil).Read(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(snap.Commits) != 0 || len(snap.Branches) != 0 {
		t.Fatalf("expected empty snapshot")
	}
	if snap.Status.CurrentBranch != "main" {
		t.Fatalf("status not carried over")
	}
}

func TestChangedPathsUnion(t *testing.T) {
	status := WorkingTreeStatus{
		Staged:    []string{"a.txt", "b.txt"},
		Modified:  []string{"a.txt"},
		Untracked: []string{"c.txt"},
	}
	got := status.ChangedPaths()
	want := []string{"a.txt", "b.txt", "c.txt"}
	if len(got) != len(want) {
		t.Fatalf("union: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("union order: got %v want %v", got, want)
		}
	}
}

func TestCommitSummary(t *testing.T) {
	c := Commit{Message: "subject line\n\nbody text"}
	if got := c.Summary(); got != "subject line" {
		t.Fatalf("summary %q", got)
	}
	if got := (Commit{}).Summary(); got != "" {
		t.Fatalf("empty message summary %q", got)
	}
}
