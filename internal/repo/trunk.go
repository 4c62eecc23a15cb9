package repo

// trunkNames is the preference order used when the remote gives no signal.
var trunkNames = []string{"main", "master", "develop"}

// ResolveTrunk picks the canonical base branch name. remoteHead is the
// branch name the remote's default-branch pointer targets ("" when the
// lookup gave no signal). Resolution never fails hard; an empty result
// means "no trunk known".
func ResolveTrunk(remoteHead string, branches []Branch) string {
	if len(branches) == 0 {
		return ""
	}
	if remoteHead != "" && hasBranchNamed(branches, remoteHead) {
		return remoteHead
	}
	for _, name := range trunkNames {
		if hasBranchNamed(branches, name) {
			return name
		}
	}
	return branches[0].LocalName()
}

// ResolveTrunkHead picks the authoritative head commit for the resolved
// trunk. When local and remote incarnations disagree, the more recent one
// by head-commit timestamp wins; a missing commit, a zero timestamp, or a
// tie falls back to the remote, which is treated as the durable source of
// truth.
func ResolveTrunkHead(remoteHead string, branches []Branch, commits []Commit) string {
	name := ResolveTrunk(remoteHead, branches)
	if name == "" {
		return ""
	}
	var local, remote *Branch
	for i := range branches {
		b := &branches[i]
		if b.LocalName() != name {
			continue
		}
		if b.IsRemote {
			if remote == nil {
				remote = b
			}
		} else if local == nil {
			local = b
		}
	}
	switch {
	case local == nil && remote == nil:
		return ""
	case local == nil:
		return remote.HeadSHA
	case remote == nil:
		return local.HeadSHA
	}
	localMs, localOK := commitTime(commits, local.HeadSHA)
	remoteMs, remoteOK := commitTime(commits, remote.HeadSHA)
	if !localOK || !remoteOK {
		return remote.HeadSHA
	}
	if localMs > remoteMs {
		return local.HeadSHA
	}
	return remote.HeadSHA
}

func hasBranchNamed(branches []Branch, name string) bool {
	for _, b := range branches {
		if b.LocalName() == name {
			return true
		}
	}
	return false
}

func commitTime(commits []Commit, sha string) (int64, bool) {
	for i := range commits {
		if commits[i].SHA == sha {
			if commits[i].TimeMs <= 0 {
				return 0, false
			}
			return commits[i].TimeMs, true
		}
	}
	return 0, false
}
