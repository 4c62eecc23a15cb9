package stacks

import (
	"sort"

	"github.com/jhleao/teapot-sub006/internal/repo"
)

// Stack is one linear branch lineage: an oldest-first run of commits plus
// the stacks that spin off of it. The forest is rebuilt wholesale from
// every snapshot; nothing here is ever mutated in place.
type Stack struct {
	Ref     string       `json:"ref,omitempty"` // representative branch, empty for unnamed lines
	IsTrunk bool         `json:"isTrunk"`
	Commits []CommitNode `json:"commits"`
}

// CommitNode is a commit as it appears inside a stack.
type CommitNode struct {
	SHA      string      `json:"sha"`
	Name     string      `json:"name"`
	TimeMs   int64       `json:"timeMs"`
	Tips     []BranchTip `json:"tips,omitempty"`
	Spinoffs []*Stack    `json:"spinoffs,omitempty"`
}

// BranchTip is a branch whose head is this commit.
type BranchTip struct {
	Ref       string `json:"ref"`
	IsRemote  bool   `json:"isRemote"`
	IsTrunk   bool   `json:"isTrunk"`
	IsCurrent bool   `json:"isCurrent"`
}

type builder struct {
	ix      *repo.Index
	current string          // working tree's checked-out branch
	placed  map[string]bool // branch refs already attached to a node
	covered map[string]bool // commit shas already owned by a stack
}

// Build derives the stack forest from a snapshot. The trunk stack comes
// first when a trunk resolves; branches unreachable from it become
// top-level stacks of their own, in lexicographic ref order. Commits
// within a stack run oldest-first; spinoffs at a commit are ordered by
// representative ref, unnamed lines last by tip sha. Returns nil when the
// snapshot has no commits.
func Build(snap *repo.Snapshot) []*Stack {
	if snap == nil || len(snap.Commits) == 0 {
		return nil
	}
	b := &builder{
		ix:      repo.NewIndex(snap),
		current: snap.Status.CurrentBranch,
		placed:  make(map[string]bool, len(snap.Branches)),
		covered: make(map[string]bool, len(snap.Commits)),
	}

	var out []*Stack
	trunkHead := repo.ResolveTrunkHead(snap.RemoteHead, snap.Branches, snap.Commits)
	if trunkHead != "" {
		if _, ok := b.ix.Commit(trunkHead); ok {
			st := b.buildStack(b.walkToRoot(trunkHead), trunkHead, repo.ResolveTrunk(snap.RemoteHead, snap.Branches), true)
			st.IsTrunk = true
			out = append(out, st)
		}
	}

	branches := append([]repo.Branch(nil), snap.Branches...)
	sort.Slice(branches, func(i, j int) bool { return branches[i].Ref < branches[j].Ref })
	for _, br := range branches {
		if b.placed[br.Ref] {
			continue
		}
		if _, ok := b.ix.Commit(br.HeadSHA); !ok {
			// Branch pointing outside the snapshot (shallow fetch); keep it
			// visible as a single placeholder entry instead of dropping it.
			b.placed[br.Ref] = true
			out = append(out, &Stack{Ref: br.Ref, Commits: []CommitNode{{
				SHA:  br.HeadSHA,
				Name: shortSHA(br.HeadSHA),
				Tips: []BranchTip{{Ref: br.Ref, IsRemote: br.IsRemote, IsTrunk: br.IsTrunk, IsCurrent: !br.IsRemote && br.Ref == b.current}},
			}}})
			continue
		}
		root := b.walkToRoot(br.HeadSHA)
		tip, ref := b.deepestTipFrom(root)
		if tip == "" {
			continue
		}
		out = append(out, b.buildStack(root, tip, ref, true))
	}
	return out
}

// buildStack assembles the main line between start and tip, inclusive,
// attaching branch tips and recursing into divergent children. For a
// spinoff, the start commit is shared with the parent stack, which keeps
// ownership of its tips and sibling spinoffs.
func (b *builder) buildStack(start, tip, ref string, topLevel bool) *Stack {
	st := &Stack{Ref: ref}
	main := b.mainLine(start, tip)
	for i, sha := range main {
		b.covered[sha] = true
		node := CommitNode{SHA: sha, Name: shortSHA(sha)}
		commit, ok := b.ix.Commit(sha)
		if ok {
			node.TimeMs = commit.TimeMs
			if s := commit.Summary(); s != "" {
				node.Name = s
			}
		}
		if shared := i == 0 && !topLevel; !shared {
			node.Tips = b.tipsAt(sha)
			if ok {
				next := ""
				if i+1 < len(main) {
					next = main[i+1]
				}
				node.Spinoffs = b.spinoffsAt(commit, next)
			}
		}
		st.Commits = append(st.Commits, node)
	}
	return st
}

// mainLine walks tip back to start via parent links and returns the path
// oldest-first. A cycle or a dangling link truncates the walk instead of
// failing.
func (b *builder) mainLine(start, tip string) []string {
	var path []string
	visited := map[string]bool{}
	for cur := tip; cur != "" && !visited[cur]; {
		visited[cur] = true
		path = append(path, cur)
		if cur == start {
			break
		}
		commit, ok := b.ix.Commit(cur)
		if !ok {
			break
		}
		cur = commit.ParentSHA
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// walkToRoot follows parent links from tip as far as the snapshot allows.
func (b *builder) walkToRoot(tip string) string {
	visited := map[string]bool{}
	cur := tip
	for {
		visited[cur] = true
		commit, ok := b.ix.Commit(cur)
		if !ok || commit.ParentSHA == "" || visited[commit.ParentSHA] {
			return cur
		}
		if _, ok := b.ix.Commit(commit.ParentSHA); !ok {
			return cur
		}
		cur = commit.ParentSHA
	}
}

func (b *builder) tipsAt(sha string) []BranchTip {
	branches := append([]repo.Branch(nil), b.ix.TipsAt(sha)...)
	sort.Slice(branches, func(i, j int) bool { return branches[i].Ref < branches[j].Ref })
	var tips []BranchTip
	for _, br := range branches {
		if b.placed[br.Ref] {
			continue
		}
		b.placed[br.Ref] = true
		tips = append(tips, BranchTip{
			Ref:       br.Ref,
			IsRemote:  br.IsRemote,
			IsTrunk:   br.IsTrunk,
			IsCurrent: !br.IsRemote && br.Ref == b.current,
		})
	}
	return tips
}

func (b *builder) spinoffsAt(commit *repo.Commit, next string) []*Stack {
	var spins []*Stack
	for _, child := range commit.ChildrenSHA {
		if child == next || b.covered[child] {
			continue
		}
		tip, ref := b.deepestTipFrom(child)
		if tip == "" {
			continue
		}
		spins = append(spins, b.buildStack(commit.SHA, tip, ref, false))
	}
	sort.SliceStable(spins, func(i, j int) bool {
		a, z := spins[i], spins[j]
		if (a.Ref == "") != (z.Ref == "") {
			return a.Ref != ""
		}
		if a.Ref != z.Ref {
			return a.Ref < z.Ref
		}
		return tipSHA(a) < tipSHA(z)
	})
	return spins
}

// deepestTipFrom picks the commit a divergent line should run to: the
// deepest reachable commit carrying an unplaced branch ref (depth wins,
// then the lexicographically smaller ref), or the deepest reachable commit
// when the line carries no branch at all. Covered commits are pruned, which
// both avoids rework and bounds walks over cyclic input.
func (b *builder) deepestTipFrom(from string) (string, string) {
	type candidate struct {
		sha   string
		ref   string
		depth int
	}
	var bestTip, bestLeaf *candidate
	visited := map[string]bool{}
	var walk func(sha string, depth int)
	walk = func(sha string, depth int) {
		if sha == "" || visited[sha] || b.covered[sha] {
			return
		}
		visited[sha] = true
		commit, ok := b.ix.Commit(sha)
		if !ok {
			return
		}
		if ref := b.unplacedRefAt(sha); ref != "" {
			if bestTip == nil || depth > bestTip.depth || (depth == bestTip.depth && ref < bestTip.ref) {
				bestTip = &candidate{sha: sha, ref: ref, depth: depth}
			}
		}
		if bestLeaf == nil || depth > bestLeaf.depth || (depth == bestLeaf.depth && sha < bestLeaf.sha) {
			bestLeaf = &candidate{sha: sha, depth: depth}
		}
		for _, child := range commit.ChildrenSHA {
			walk(child, depth+1)
		}
	}
	walk(from, 0)
	if bestTip != nil {
		return bestTip.sha, bestTip.ref
	}
	if bestLeaf != nil {
		return bestLeaf.sha, ""
	}
	return "", ""
}

func (b *builder) unplacedRefAt(sha string) string {
	best := ""
	for _, br := range b.ix.TipsAt(sha) {
		if b.placed[br.Ref] {
			continue
		}
		if best == "" || br.Ref < best {
			best = br.Ref
		}
	}
	return best
}

func tipSHA(st *Stack) string {
	if len(st.Commits) == 0 {
		return ""
	}
	return st.Commits[len(st.Commits)-1].SHA
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
