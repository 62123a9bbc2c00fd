package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"cppbind/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Write a default .cppbind.toml configuration file",
	Long: `Write a .cppbind.toml file with the default parser, file selection and
resolution settings to the given directory (default: the current one).

Examples:
  # Initialize the current directory
  cppbind init

  # Replace an existing configuration
  cppbind init --force src/`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")

		path, err := config.Default().Write(dir, force)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolP("force", "F", false, "Overwrite an existing configuration file")
}
