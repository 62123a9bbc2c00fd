package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cppbind/pkg/formatter"
)

var scopesCmd = &cobra.Command{
	Use:   "scopes [file]",
	Short: "Print the scope tree of a C++ file",
	Long: `Print every scope of a C++ file (namespaces, classes, functions, blocks,
prototypes and templates) with the names declared directly in it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := openDocument(args[0], false)
		if err != nil {
			return err
		}
		scopes := doc.GetResolver().AllScopes()
		fmt.Fprint(cmd.OutOrStdout(), formatter.New().FormatScopes(scopes))
		return nil
	},
}
