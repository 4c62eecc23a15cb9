package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	gitclient "github.com/jhleao/teapot-sub006/internal/git/client"
	"github.com/jhleao/teapot-sub006/internal/logging"
	"github.com/jhleao/teapot-sub006/internal/repo"
	"github.com/jhleao/teapot-sub006/internal/stacks"
)

var (
	flagGitBin string
	flagGoGit  bool
	flagJSON   bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "stackdump [path]",
		Short: "Print the stack forest for a repository",
		Long:  "stackdump snapshots a repository and prints the derived stack forest, for debugging the builder without the GUI.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	cmd.Flags().StringVar(&flagGitBin, "git-bin", "", "git binary to use (default: git from PATH)")
	cmd.Flags().BoolVar(&flagGoGit, "gogit", false, "use the pure-Go backend instead of the git binary")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "emit the forest as JSON")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	var git gitclient.Client
	if flagGoGit {
		git = gitclient.NewGoGitClient()
	} else {
		git = gitclient.NewExecClient(flagGitBin)
	}
	ctx := context.Background()
	root, err := git.RepoRoot(ctx, path)
	if err != nil {
		return err
	}
	snap, err := repo.NewReader(git, logging.Nop()).Read(ctx, root)
	if err != nil {
		return err
	}
	forest := stacks.Build(snap)
	if flagJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(forest)
	}
	if len(forest) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no commits")
		return nil
	}
	for _, st := range forest {
		printStack(cmd.OutOrStdout(), st, "")
	}
	return nil
}

var (
	trunkColor  = color.New(color.FgGreen, color.Bold)
	branchColor = color.New(color.FgCyan)
	shaColor    = color.New(color.Faint)
)

func printStack(w io.Writer, st *stacks.Stack, indent string) {
	label := st.Ref
	if label == "" {
		label = "(unnamed)"
	}
	if st.IsTrunk {
		fmt.Fprintf(w, "%s%s\n", indent, trunkColor.Sprint(label))
	} else {
		fmt.Fprintf(w, "%s%s\n", indent, branchColor.Sprint(label))
	}
	for _, c := range st.Commits {
		fmt.Fprintf(w, "%s  %s %s%s\n", indent, shaColor.Sprint(shortSHA(c.SHA)), c.Name, tipsLabel(c.Tips))
		for _, spin := range c.Spinoffs {
			printStack(w, spin, indent+"    ")
		}
	}
}

func tipsLabel(tips []stacks.BranchTip) string {
	if len(tips) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tips))
	for _, t := range tips {
		label := t.Ref
		if t.IsCurrent {
			label += "*"
		}
		parts = append(parts, "["+label+"]")
	}
	return " " + strings.Join(parts, "")
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
