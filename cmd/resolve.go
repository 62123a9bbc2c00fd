package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cppbind/pkg/formatter"
	"cppbind/pkg/semantics"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Bind every name in a C++ file to its declaration",
	Long: `Resolve every name of a C++ file and print what each one refers to.
With --lookup, print the entity a qualified name such as "N::C::f" denotes
instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(args[0], false)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		f := formatter.New()

		resolutions, err := doc.Resolve(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}

		if path, _ := cmd.Flags().GetString("lookup"); path != "" {
			e, err := doc.FindEntity(path)
			if err != nil {
				return err
			}
			fmt.Fprint(out, f.FormatEntity(e))
			return nil
		}

		if problemsOnly, _ := cmd.Flags().GetBool("problems"); problemsOnly {
			var kept []semantics.Resolution
			for _, res := range resolutions {
				if semantics.IsProblem(res.Binding) {
					kept = append(kept, res)
				}
			}
			resolutions = kept
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			return formatter.WriteJSON(out, bindingRecords(resolutions))
		case "human":
			fmt.Fprint(out, f.FormatBindings(resolutions))
			return nil
		}
		return fmt.Errorf("unknown format %q", format)
	},
}

func init() {
	resolveCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
	resolveCmd.Flags().StringP("lookup", "l", "", "Describe the entity with this qualified name")
	resolveCmd.Flags().BoolP("problems", "p", false, "Only list names that do not resolve")
}

type bindingRecord struct {
	Name    string `json:"name"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Kind    string `json:"kind"`
	Binding string `json:"binding"`
}

func bindingRecords(resolutions []semantics.Resolution) []bindingRecord {
	records := make([]bindingRecord, 0, len(resolutions))
	for _, res := range resolutions {
		start := res.Name.Range().Start
		records = append(records, bindingRecord{
			Name:    res.Name.String(),
			Line:    start.Line,
			Column:  start.Column,
			Kind:    res.Binding.Kind().String(),
			Binding: formatter.DescribeBinding(res.Binding),
		})
	}
	return records
}

// commandContext returns the command's context, or a background one when
// it runs outside of ExecuteContext
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
