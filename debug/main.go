package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"cppbind/pkg/config"
	"cppbind/pkg/document"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: debug <project-dir> [target-file]")
		os.Exit(1)
	}

	projectDir := os.Args[1]

	cfg, err := config.Load(projectDir)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Configuration Debug ===\n")
	if cfg.Path == "" {
		fmt.Printf("Config file: <defaults>\n")
	} else {
		fmt.Printf("Config file: %s\n", cfg.Path)
	}
	fmt.Printf("Structural: %t\n", cfg.Parser.Structural)
	fmt.Printf("Max backtracks: %d\n", cfg.Parser.MaxBacktracks)
	fmt.Printf("Suggest threshold: %.2f\n", cfg.Resolve.SuggestThreshold)
	fmt.Printf("Include: %v\n", cfg.Files.Include)
	fmt.Printf("Exclude: %v\n", cfg.Files.Exclude)

	ws := document.NewWorkspace(projectDir, document.WithConfig(cfg))
	files, err := ws.Discover()
	if err != nil {
		fmt.Printf("Error discovering files: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nSelected files: %d\n", len(files))
	for _, f := range files {
		fmt.Printf("  %s\n", f)
	}

	if len(os.Args) < 3 {
		return
	}

	// Test file matching
	targetFile := os.Args[2]
	relPath, err := filepath.Rel(projectDir, targetFile)
	if err != nil {
		relPath = filepath.Base(targetFile)
	}
	relPath = filepath.ToSlash(relPath)
	fmt.Printf("\nTarget: %s\n", relPath)
	for _, pattern := range cfg.Files.Include {
		matched, err := doublestar.Match(pattern, relPath)
		fmt.Printf("  Include '%s': %t (err: %v)\n", pattern, matched, err)
	}
	for _, pattern := range cfg.Files.Exclude {
		matched, err := doublestar.Match(pattern, relPath)
		fmt.Printf("  Exclude '%s': %t (err: %v)\n", pattern, matched, err)
	}
	fmt.Printf("  Selected: %t\n", cfg.Files.Matches(relPath))
}
