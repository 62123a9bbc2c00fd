package semantics

import (
	"context"
	"runtime"
	"sort"

	"github.com/hbollon/go-edlib"
	"golang.org/x/sync/errgroup"

	"cppbind/pkg/ast"
)

// Resolution pairs a name with its binding
type Resolution struct {
	Name    ast.Name
	Binding Binding
}

// Names returns every resolvable name of the unit in pre-order. Segments of
// qualified names and the template name of a template-id are included;
// empty placeholder names are not.
func (r *Resolver) Names() []ast.Name {
	var out []ast.Name
	ast.Inspect(r.unit, func(n ast.Node) bool {
		if name, ok := n.(ast.Name); ok && name.Identifier() != "" {
			out = append(out, name)
		}
		return true
	})
	return out
}

// ResolveAll resolves every name of the unit using at most the configured
// number of workers. Results are ordered by node ID.
func (r *Resolver) ResolveAll(ctx context.Context) ([]Resolution, error) {
	names := r.Names()
	results := make([]Resolution, len(names))

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, n := range names {
		i, n := i, n
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Resolution{Name: n, Binding: r.Resolve(n)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Name.ID() < results[j].Name.ID()
	})
	return results, nil
}

// Suggestion is a visible binding whose name is close to an unresolved one
type Suggestion struct {
	Binding    Binding
	Similarity float32
}

// Suggest ranks the bindings visible from n by Jaro-Winkler similarity to
// its identifier. It returns nothing for a name that resolves.
func (r *Resolver) Suggest(n ast.Name) []Suggestion {
	if !IsProblem(r.Resolve(n)) {
		return nil
	}
	target := n.Identifier()
	threshold := float32(r.cfg.SuggestThreshold)

	seen := map[*Entity]bool{}
	var out []Suggestion
	for s := r.enclosingScope(n); s != nil; s = s.parent {
		for _, name := range s.Names() {
			if name == target {
				continue
			}
			score, err := edlib.StringsSimilarity(target, name, edlib.JaroWinkler)
			if err != nil || score < threshold {
				continue
			}
			for _, e := range s.Local(name) {
				if seen[e] {
					continue
				}
				seen[e] = true
				out = append(out, Suggestion{Binding: e, Similarity: score})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Binding.Name() < out[j].Binding.Name()
	})
	if limit := r.cfg.MaxSuggestions; limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
