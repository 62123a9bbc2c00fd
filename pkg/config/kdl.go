package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL reads the KDL form of the configuration:
//
//	parser {
//	    restrict true
//	    max_backtracks 5000
//	}
//	files {
//	    include "src/**/*.cpp" "include/**/*.h"
//	}
//	resolve {
//	    suggest_threshold 0.75
//	}
func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "parser":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "restrict":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Parser.Restrict = b
					}
				case "long_long":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Parser.LongLong = b
					}
				case "structural":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Parser.Structural = b
					}
				case "max_backtracks":
					if v, ok := firstIntArg(cn); ok {
						cfg.Parser.MaxBacktracks = v
					}
				case "max_tokens":
					if v, ok := firstIntArg(cn); ok {
						cfg.Parser.MaxTokens = v
					}
				}
			}
		case "files":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "include":
					cfg.Files.Include = collectStringArgs(cn)
				case "exclude":
					cfg.Files.Exclude = collectStringArgs(cn)
				}
			}
		case "resolve":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "suggest_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Resolve.SuggestThreshold = v
					}
				case "max_suggestions":
					if v, ok := firstIntArg(cn); ok {
						cfg.Resolve.MaxSuggestions = v
					}
				case "workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Resolve.Workers = v
					}
				}
			}
		}
	}
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// collectStringArgs accepts both `include "a" "b"` and a block of string
// child nodes.
func collectStringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		for _, child := range n.Children {
			if len(child.Arguments) > 0 {
				if s, ok := child.Arguments[0].Value.(string); ok {
					out = append(out, s)
					continue
				}
			}
			if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
