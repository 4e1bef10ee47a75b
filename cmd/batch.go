package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotcommander/praxy/internal/discovery"
	"github.com/dotcommander/praxy/internal/git"
	"github.com/dotcommander/praxy/internal/logging"
	"github.com/dotcommander/praxy/internal/output"
	"github.com/dotcommander/praxy/internal/service"
)

var (
	batchUser    string
	batchInclude []string
	batchExclude []string
	batchStaged  bool
	batchChanged bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Score every session file under a directory",
	Long: `The batch command discovers session files under a directory (the current
directory by default) and scores them concurrently.

Default patterns: **/*.json, **/*.yaml, **/*.yml
Hidden files, hidden directories and node_modules are skipped.

Use --staged or --changed to score only session files that git reports as
staged or uncommitted.

The exit code is non-zero when any file could not be scored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchUser, "user", "u", "", "Learner id to record results under")
	batchCmd.Flags().StringSliceVar(&batchInclude, "include", nil, "Glob patterns to include (replaces the defaults)")
	batchCmd.Flags().StringSliceVar(&batchExclude, "exclude", nil, "Additional glob patterns to exclude")
	batchCmd.Flags().BoolVar(&batchStaged, "staged", false, "Only score session files staged in git")
	batchCmd.Flags().BoolVar(&batchChanged, "changed", false, "Only score session files with uncommitted changes")
	batchCmd.MarkFlagsMutuallyExclusive("staged", "changed")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	files, err := collectSessions(root)
	if err != nil {
		return err
	}
	logging.New("batch").Debug("collected session files",
		"root", root, "count", len(files))

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}

	items := a.svc.ScoreFiles(cmd.Context(), service.Session{UserID: batchUser}, paths)
	for i := range items {
		items[i].Path = files[i].RelPath
	}
	return report(cmd.OutOrStdout(), output.NewSummary(items))
}

// collectSessions picks session files from git or by walking root
func collectSessions(root string) ([]discovery.File, error) {
	if !batchStaged && !batchChanged {
		files, err := discovery.NewFileDiscovery(root, batchInclude, batchExclude).DiscoverFiles()
		if err != nil {
			return nil, fmt.Errorf("error discovering files: %w", err)
		}
		return files, nil
	}

	var (
		paths []string
		err   error
	)
	if batchStaged {
		paths, err = git.StagedSessions(root)
	} else {
		paths, err = git.ChangedSessions(root)
	}
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	files := make([]discovery.File, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			rel = p
		}
		files[i] = discovery.File{Path: p, RelPath: filepath.ToSlash(rel)}
	}
	return files, nil
}
