package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"cppbind/pkg/config"
	"cppbind/pkg/parser"
)

// Workspace is a directory of C++ sources selected by the project
// configuration. Parsed documents are cached by content hash, so loading an
// unchanged file again reuses the previous parse.
type Workspace struct {
	root string
	cfg  *config.Config
	log  commonlog.Logger

	mu   sync.Mutex
	docs map[string]*Document // by slash-separated path relative to root
}

// NewWorkspace creates a workspace rooted at dir
func NewWorkspace(root string, opts ...Option) *Workspace {
	o := options{
		cfg: config.Default(),
		log: commonlog.GetLogger("cppbind.workspace"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Workspace{
		root: root,
		cfg:  o.cfg,
		log:  o.log,
		docs: make(map[string]*Document),
	}
}

// Root returns the workspace directory
func (w *Workspace) Root() string { return w.root }

// Config returns the workspace configuration
func (w *Workspace) Config() *config.Config { return w.cfg }

// Discover lists the files selected by the include and exclude patterns,
// relative to the root and sorted.
func (w *Workspace) Discover() ([]string, error) {
	fsys := os.DirFS(w.root)
	seen := map[string]bool{}
	var out []string
	patterns := w.cfg.Files.Include
	if len(patterns) == 0 {
		patterns = []string{"**/*"}
	}
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to expand %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || !w.cfg.Files.Matches(m) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	w.log.Debugf("discovered %d files under %s", len(out), w.root)
	return out, nil
}

// Load parses paths concurrently, reusing cached documents whose content
// has not changed. Paths are relative to the root; the result keeps their
// order.
func (w *Workspace) Load(ctx context.Context, paths []string) ([]*Document, error) {
	docs := make([]*Document, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := w.load(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (w *Workspace) load(path string) (*Document, error) {
	rel := filepath.ToSlash(path)
	content, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", rel, err)
	}
	hash := xxhash.Sum64(content)

	w.mu.Lock()
	cached, ok := w.docs[rel]
	w.mu.Unlock()
	if ok && cached.hash == hash {
		w.log.Debugf("%s unchanged", rel)
		return cached, nil
	}

	doc, err := NewFromContent(rel, string(content), WithConfig(w.cfg), WithLogger(w.log))
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.docs[rel] = doc
	w.mu.Unlock()
	return doc, nil
}

// Document returns the cached document for path, if any
func (w *Workspace) Document(path string) (*Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.docs[filepath.ToSlash(path)]
	return doc, ok
}

// Invalidate drops the cached document for path
func (w *Workspace) Invalidate(path string) {
	w.mu.Lock()
	delete(w.docs, filepath.ToSlash(path))
	w.mu.Unlock()
}

// FileReport is the check result of one file
type FileReport struct {
	Path   string            `json:"path"`
	Stats  *Stats            `json:"stats"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// Report is the check result of a workspace
type Report struct {
	Files    []FileReport `json:"files"`
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
}

// HasErrors reports whether any file has an error issue
func (r *Report) HasErrors() bool { return r.Errors > 0 }

// Check discovers, loads and validates every file of the workspace
func (w *Workspace) Check(ctx context.Context) (*Report, error) {
	paths, err := w.Discover()
	if err != nil {
		return nil, err
	}
	return w.CheckFiles(ctx, paths)
}

// CheckFiles loads and validates the given files
func (w *Workspace) CheckFiles(ctx context.Context, paths []string) (*Report, error) {
	docs, err := w.Load(ctx, paths)
	if err != nil {
		return nil, err
	}

	files := make([]FileReport, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.workers())
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			issues, err := doc.Validate(gctx)
			if err != nil {
				return fmt.Errorf("failed to validate %s: %w", doc.GetFilename(), err)
			}
			files[i] = FileReport{Path: doc.GetFilename(), Stats: doc.GetStats(), Issues: issues}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Files: files}
	for _, f := range files {
		for _, issue := range f.Issues {
			switch issue.Severity {
			case parser.SeverityError:
				report.Errors++
			case parser.SeverityWarning:
				report.Warnings++
			}
		}
	}
	w.log.Infof("checked %d files: %d errors, %d warnings", len(files), report.Errors, report.Warnings)
	return report, nil
}

func (w *Workspace) workers() int {
	if n := w.cfg.Resolve.Workers; n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}
