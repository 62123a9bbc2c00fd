package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"cppbind/pkg/config"
	"cppbind/pkg/document"
)

// Version information
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	configPath string
	verbosity  int
)

var rootCmd = &cobra.Command{
	Use:   "cppbind",
	Short: "A C++ parser and name resolver",
	Long: `cppbind parses C++ sources into a syntax tree, reports syntax errors
without stopping at the first one, and binds every name to the declaration
it refers to: namespaces, classes, functions, variables, labels and more.`,
	Version:       getVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commonlog.Configure(verbosity, nil)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "cppbind %s\n", getVersionString())
		fmt.Fprintf(out, "  Version: %s\n", version)
		fmt.Fprintf(out, "  Commit:  %s\n", commit)
		fmt.Fprintf(out, "  Date:    %s\n", date)
	},
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return version
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads --config when given, else the project file of dir
func loadConfig(dir string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load(dir)
}

// openDocument parses filename with the configuration of its directory
func openDocument(filename string, structural bool) (*document.Document, error) {
	cfg, err := loadConfig(filepath.Dir(filename))
	if err != nil {
		return nil, err
	}
	if structural {
		cfg.Parser.Structural = true
	}
	return document.NewFromFile(filename, document.WithConfig(cfg))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (default: .cppbind.toml, .cppbind.kdl or .cppbind.yaml in the input directory)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (repeatable)")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(scopesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
