// Package config loads project configuration for cppbind from .cppbind.toml,
// .cppbind.kdl or .cppbind.yaml.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"
)

const (
	// TOMLFile is the preferred project configuration file name
	TOMLFile = ".cppbind.toml"
	// KDLFile is read when no TOML file exists
	KDLFile = ".cppbind.kdl"
	// YAMLFile is the last fallback
	YAMLFile = ".cppbind.yaml"

	DefaultMaxBacktracks    = 100000
	DefaultMaxTokens        = 1000000
	DefaultSuggestThreshold = 0.8
	DefaultMaxSuggestions   = 3
)

// Config is the complete project configuration
type Config struct {
	Parser  Parser  `toml:"parser" yaml:"parser"`
	Files   Files   `toml:"files" yaml:"files"`
	Resolve Resolve `toml:"resolve" yaml:"resolve"`

	// Path is the file the configuration was read from, empty for defaults
	Path string `toml:"-" yaml:"-"`
}

// Parser holds dialect and mode switches for the parser
type Parser struct {
	// Restrict makes `restrict` a keyword
	Restrict bool `toml:"restrict" yaml:"restrict"`
	// LongLong accepts `long long`
	LongLong bool `toml:"long_long" yaml:"long_long"`
	// Structural skips function bodies
	Structural bool `toml:"structural" yaml:"structural"`
	// MaxBacktracks reports a warning once a parse exceeds this many
	// backtracks; zero disables the check
	MaxBacktracks int `toml:"max_backtracks" yaml:"max_backtracks"`
	// MaxTokens caps the tokenizer output per file
	MaxTokens int `toml:"max_tokens" yaml:"max_tokens"`
}

// Files selects the inputs of multi-file commands
type Files struct {
	Include []string `toml:"include" yaml:"include"`
	Exclude []string `toml:"exclude" yaml:"exclude"`
}

// Resolve tunes name resolution
type Resolve struct {
	// SuggestThreshold is the minimum similarity for a "did you mean" hint
	SuggestThreshold float64 `toml:"suggest_threshold" yaml:"suggest_threshold"`
	MaxSuggestions   int     `toml:"max_suggestions" yaml:"max_suggestions"`
	// Workers bounds concurrent resolution; zero means GOMAXPROCS
	Workers int `toml:"workers" yaml:"workers"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Parser: Parser{
			Restrict:      true,
			LongLong:      true,
			MaxBacktracks: DefaultMaxBacktracks,
			MaxTokens:     DefaultMaxTokens,
		},
		Files: Files{
			Include: []string{"**/*.{h,hh,hpp,hxx,cc,cpp,cxx,c++}"},
			Exclude: []string{"**/build/**", "**/.git/**"},
		},
		Resolve: Resolve{
			SuggestThreshold: DefaultSuggestThreshold,
			MaxSuggestions:   DefaultMaxSuggestions,
		},
	}
}

// Load reads the configuration for dir, trying TOML, then KDL, then YAML.
// With none present, defaults are returned.
func Load(dir string) (*Config, error) {
	for _, name := range []string{TOMLFile, KDLFile, YAMLFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return Default(), nil
}

// LoadFile reads an explicit configuration file, choosing the format by
// extension.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kdl":
		cfg, err = parseKDL(string(content))
	case ".yaml", ".yml":
		cfg, err = parseYAML(content)
	default:
		cfg, err = parseTOML(content)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func parseTOML(content []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseYAML(content []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(content, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and glob syntax
func (c *Config) Validate() error {
	if c.Parser.MaxBacktracks < 0 {
		return fmt.Errorf("parser.max_backtracks must not be negative")
	}
	if c.Parser.MaxTokens < 0 {
		return fmt.Errorf("parser.max_tokens must not be negative")
	}
	if c.Resolve.SuggestThreshold < 0 || c.Resolve.SuggestThreshold > 1 {
		return fmt.Errorf("resolve.suggest_threshold must be between 0 and 1")
	}
	if c.Resolve.Workers < 0 {
		return fmt.Errorf("resolve.workers must not be negative")
	}
	for _, pattern := range append(append([]string{}, c.Files.Include...), c.Files.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}

// Matches reports whether a slash-separated relative path is selected by
// the include patterns and not removed by an exclude pattern.
func (f Files) Matches(path string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range f.Exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// Marshal renders the configuration as TOML
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# cppbind project configuration\n\n")
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write stores the configuration as TOML in dir. An existing file is only
// replaced when force is set.
func (c *Config) Write(dir string, force bool) (string, error) {
	path := filepath.Join(dir, TOMLFile)
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%s already exists", path)
	}
	data, err := c.Marshal()
	if err != nil {
		return path, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return path, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
