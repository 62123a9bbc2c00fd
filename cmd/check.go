package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cppbind/pkg/document"
	"cppbind/pkg/formatter"
)

var checkCmd = &cobra.Command{
	Use:   "check [directory | files...]",
	Short: "Report syntax errors and unresolved names",
	Long: `Parse and resolve C++ sources and report every syntax error and every
name that does not resolve, with "did you mean" hints for close matches.

Given a directory (default: the current one), the files selected by the
[files] include and exclude patterns of the configuration are checked.
Given files, exactly those are checked. The command fails when any error
is found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, paths, err := workspaceFor(args)
		if err != nil {
			return err
		}

		var report *document.Report
		if paths == nil {
			report, err = ws.Check(commandContext(cmd))
		} else {
			report, err = ws.CheckFiles(commandContext(cmd), paths)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			if err := formatter.WriteJSON(out, report); err != nil {
				return err
			}
		case "human":
			fmt.Fprint(out, formatter.New().FormatReport(report))
		default:
			return fmt.Errorf("unknown format %q", format)
		}

		if report.HasErrors() {
			return fmt.Errorf("found %d errors", report.Errors)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
}

// workspaceFor builds the workspace for a directory argument, or for a list
// of files relative to the current directory. paths is nil for a directory.
func workspaceFor(args []string) (*document.Workspace, []string, error) {
	root := "."
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			root = args[0]
			args = nil
		}
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return nil, nil, err
	}
	ws := document.NewWorkspace(root, document.WithConfig(cfg))
	if len(args) == 0 {
		return ws, nil, nil
	}

	paths := make([]string, len(args))
	for i, arg := range args {
		paths[i] = filepath.ToSlash(filepath.Clean(arg))
	}
	return ws, paths, nil
}
