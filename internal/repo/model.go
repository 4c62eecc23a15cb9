package repo

import "strings"

// Commit is an immutable node of the snapshot DAG. ParentSHA is empty for
// a root commit; merges are not modeled, only the first parent is kept.
type Commit struct {
	SHA         string   `json:"sha"`
	Message     string   `json:"message"`
	TimeMs      int64    `json:"timeMs"`
	ParentSHA   string   `json:"parentSha,omitempty"`
	ChildrenSHA []string `json:"childrenSha,omitempty"`
}

// Summary returns the first line of the commit message.
func (c Commit) Summary() string {
	msg := strings.TrimSpace(c.Message)
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return strings.TrimSpace(msg)
}

// Branch is a transient view over the snapshot. Exactly one branch, or one
// local/remote pair, carries IsTrunk after resolution.
type Branch struct {
	Ref      string `json:"ref"`
	IsTrunk  bool   `json:"isTrunk"`
	IsRemote bool   `json:"isRemote"`
	HeadSHA  string `json:"headSha"`
}

// LocalName strips the remote segment from a remote-tracking ref, so
// origin/main compares equal to main.
func (b Branch) LocalName() string {
	if !b.IsRemote {
		return b.Ref
	}
	if idx := strings.Index(b.Ref, "/"); idx >= 0 {
		return b.Ref[idx+1:]
	}
	return b.Ref
}

// WorkingTreeStatus is a read-only snapshot of uncommitted state.
type WorkingTreeStatus struct {
	CurrentBranch string `json:"currentBranch,omitempty"`
	HeadSHA       string `json:"headSha,omitempty"`
	Upstream      string `json:"upstream,omitempty"`
	Detached      bool   `json:"detached"`
	Rebasing      bool   `json:"rebasing"`

	Staged     []string `json:"staged,omitempty"`
	Modified   []string `json:"modified,omitempty"`
	Created    []string `json:"created,omitempty"`
	Deleted    []string `json:"deleted,omitempty"`
	Renamed    []string `json:"renamed,omitempty"`
	Untracked  []string `json:"untracked,omitempty"`
	Conflicted []string `json:"conflicted,omitempty"`
}

// ChangedPaths returns the union of all status lists, deduplicated,
// preserving first-seen order.
func (s WorkingTreeStatus) ChangedPaths() []string {
	var union []string
	seen := map[string]bool{}
	for _, list := range [][]string{s.Staged, s.Modified, s.Created, s.Deleted, s.Renamed, s.Untracked, s.Conflicted} {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				union = append(union, p)
			}
		}
	}
	return union
}

// Snapshot is a point-in-time read of a repository. It is immutable once
// built and never patched; any underlying change produces a fresh one.
type Snapshot struct {
	ID         string            `json:"id"`
	Path       string            `json:"path"`
	RemoteHead string            `json:"remoteHead,omitempty"` // default-branch name from origin/HEAD
	Commits    []Commit          `json:"commits"`
	Branches   []Branch          `json:"branches"`
	Status     WorkingTreeStatus `json:"status"`
}

// Index provides O(1) commit and tip lookups over a snapshot. Built once
// per snapshot and shared through the stack builder's walk.
type Index struct {
	commits map[string]*Commit
	tips    map[string][]Branch
}

func NewIndex(s *Snapshot) *Index {
	ix := &Index{
		commits: make(map[string]*Commit, len(s.Commits)),
		tips:    make(map[string][]Branch, len(s.Branches)),
	}
	for i := range s.Commits {
		c := &s.Commits[i]
		if _, ok := ix.commits[c.SHA]; !ok {
			ix.commits[c.SHA] = c
		}
	}
	for _, b := range s.Branches {
		ix.tips[b.HeadSHA] = append(ix.tips[b.HeadSHA], b)
	}
	return ix
}

// Commit looks up a commit by sha.
func (ix *Index) Commit(sha string) (*Commit, bool) {
	c, ok := ix.commits[sha]
	return c, ok
}

// TipsAt returns the branches whose head is the given commit.
func (ix *Index) TipsAt(sha string) []Branch { return ix.tips[sha] }
