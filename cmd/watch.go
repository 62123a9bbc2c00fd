package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cppbind/pkg/document"
	"cppbind/pkg/formatter"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Check a directory again whenever its sources change",
	Long: `Run check on a directory, then watch it and check again after every
burst of changes to a selected file. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, paths, err := workspaceFor(args)
		if err != nil {
			return err
		}
		if paths != nil {
			return fmt.Errorf("%s is not a directory", args[0])
		}

		debounce, _ := cmd.Flags().GetDuration("debounce")
		w, err := document.NewWatcher(ws, debounce)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		f := formatter.New()
		return w.Run(ctx, func(report *document.Report) {
			fmt.Fprintf(out, "[%s]\n", time.Now().Format(time.TimeOnly))
			fmt.Fprint(out, f.FormatReport(report))
		})
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", document.DefaultDebounce, "Wait this long for more changes before checking")
}
