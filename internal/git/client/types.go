package client

// BranchRecord is a raw branch listing entry as reported by the backend.
type BranchRecord struct {
	Ref      string // short display name, e.g. main or origin/main
	HeadSHA  string
	IsRemote bool
}

// CommitRecord is a raw log entry. Only the first parent is retained;
// the snapshot model has no merge support.
type CommitRecord struct {
	SHA       string
	ParentSHA string
	TimeMs    int64
	Message   string
}

// StatusRecord is the raw working tree status (porcelain v2 shape).
type StatusRecord struct {
	Branch   string // empty when detached or unborn without a name
	HeadSHA  string // empty before the initial commit
	Upstream string
	Detached bool
	Rebasing bool

	Staged     []string
	Modified   []string
	Created    []string
	Deleted    []string
	Renamed    []string
	Untracked  []string
	Conflicted []string
}
