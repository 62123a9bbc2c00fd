package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cppbind/pkg/document"
	"cppbind/pkg/formatter"
	"cppbind/pkg/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a C++ file and output its declaration outline",
	Long: `Parse a C++ file and print the tree of declarations it contains together
with any syntax errors. Parsing continues after an error, so the outline
covers every declaration that could be recovered.
The output can be in JSON format for further processing or human-readable format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		structural, _ := cmd.Flags().GetBool("structural")
		doc, err := openDocument(args[0], structural)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			return outputParseJSON(cmd.OutOrStdout(), doc)
		case "human":
			return outputParseHuman(cmd.OutOrStdout(), doc)
		}
		return fmt.Errorf("unknown format %q", format)
	},
}

func init() {
	parseCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
	parseCmd.Flags().BoolP("structural", "s", false, "Skip function bodies")
}

func outputParseJSON(w io.Writer, doc *document.Document) error {
	diags := doc.GetDiagnostics()
	if diags == nil {
		diags = []parser.Diagnostic{}
	}
	return formatter.WriteJSON(w, map[string]any{
		"filename":     doc.GetFilename(),
		"declarations": formatter.New().Outline(doc.GetUnit()),
		"diagnostics":  diags,
		"stats":        doc.GetStats(),
	})
}

func outputParseHuman(w io.Writer, doc *document.Document) error {
	f := formatter.New()
	fmt.Fprintf(w, "Parsed file: %s\n", doc.GetFilename())
	fmt.Fprintf(w, "=====================================\n\n")
	fmt.Fprint(w, f.FormatOutline(f.Outline(doc.GetUnit())))

	if diags := doc.GetDiagnostics(); len(diags) > 0 {
		fmt.Fprintf(w, "\nDiagnostics:\n")
		fmt.Fprint(w, f.FormatDiagnostics(diags))
	}

	stats := doc.GetStats()
	fmt.Fprintf(w, "\nSummary:\n")
	fmt.Fprintf(w, "--------\n")
	fmt.Fprintf(w, "Tokens: %d\n", stats.Tokens)
	fmt.Fprintf(w, "Nodes: %d\n", stats.Nodes)
	fmt.Fprintf(w, "Declarations: %d\n", stats.Declarations)
	fmt.Fprintf(w, "Backtracks: %d\n", stats.Backtracks)
	fmt.Fprintf(w, "Errors: %d, warnings: %d\n", stats.Errors, stats.Warnings)
	return nil
}
