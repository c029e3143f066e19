// Package workspace loads the interface documents of a ROS package
// directory. Files are parsed concurrently by a bounded pool of workers;
// each file succeeds or fails on its own and results keep discovery order.
package workspace

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/compiler/parser"
	"github.com/rclgo/msgidl/internal/compiler/cache"
)

// Options configures a Workspace
type Options struct {
	// Package overrides the package name derived from the directory
	Package string
	// Workers bounds concurrent parses; zero means runtime.NumCPU
	Workers int
	// Cache, when set, is consulted before parsing and filled after
	Cache *cache.InterfaceCache
	// Metrics, when set, records parse counters
	Metrics *Metrics
	// Logger defaults to a no-op logger
	Logger *zap.Logger
	// ProgressFunc is called after each file, serialized across workers
	ProgressFunc func(current, total int, path string)
}

// Result is the outcome of parsing one file
type Result struct {
	Path      string
	Interface ast.Interface
	Hash      string
	Err       error
	Cached    bool
	Duration  time.Duration
}

// Summary aggregates a load
type Summary struct {
	TotalFiles  int
	Parsed      int
	Failed      int
	CacheHits   int
	CacheMisses int
	Duration    time.Duration
}

// Package is a loaded package directory
type Package struct {
	Name    string
	Dir     string
	Results []*Result
	Summary Summary
}

// Interfaces returns the successfully parsed documents in file order
func (p *Package) Interfaces() []ast.Interface {
	out := make([]ast.Interface, 0, len(p.Results))
	for _, r := range p.Results {
		if r.Err == nil {
			out = append(out, r.Interface)
		}
	}
	return out
}

// Errors returns the per-file failures in file order
func (p *Package) Errors() []error {
	var out []error
	for _, r := range p.Results {
		if r.Err != nil {
			out = append(out, r.Err)
		}
	}
	return out
}

// Lookup returns the document with the given full name
func (p *Package) Lookup(fullName string) (ast.Interface, bool) {
	for _, r := range p.Results {
		if r.Err == nil && r.Interface.FullName() == fullName {
			return r.Interface, true
		}
	}
	return nil, false
}

// Workspace parses interface files with shared options
type Workspace struct {
	opts   Options
	hasher *cache.FileHasher
	logger *zap.Logger
}

// New creates a Workspace
func New(opts Options) *Workspace {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{
		opts:   opts,
		hasher: cache.NewFileHasher(),
		logger: logger,
	}
}

// Load discovers and parses every interface file of the package at dir
func (w *Workspace) Load(ctx context.Context, dir string) (*Package, error) {
	files, err := Discover(dir)
	if err != nil {
		return nil, err
	}

	name := w.opts.Package
	if name == "" {
		name = PackageName(dir)
	}

	start := time.Now()
	results := w.ParseFiles(ctx, name, files)
	pkg := &Package{
		Name:    name,
		Dir:     dir,
		Results: results,
		Summary: summarize(results, time.Since(start)),
	}
	w.opts.Metrics.observePackage(pkg.Summary.Failed)

	w.logger.Info("package loaded",
		zap.String("package", name),
		zap.String("dir", dir),
		zap.Int("files", pkg.Summary.TotalFiles),
		zap.Int("failed", pkg.Summary.Failed),
		zap.Int("cache_hits", pkg.Summary.CacheHits),
		zap.Duration("duration", pkg.Summary.Duration))

	return pkg, nil
}

// ParseFiles parses paths as documents of package pkg. The result slice
// is index-aligned with paths.
func (w *Workspace) ParseFiles(ctx context.Context, pkg string, paths []string) []*Result {
	results := make([]*Result, len(paths))

	var (
		wg        sync.WaitGroup
		progress  sync.Mutex
		completed int
	)
	sem := make(chan struct{}, w.opts.Workers)

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
				results[i] = w.ParseFile(ctx, pkg, path)
			case <-ctx.Done():
				results[i] = &Result{Path: path, Err: ctx.Err()}
			}

			if w.opts.ProgressFunc != nil {
				progress.Lock()
				completed++
				w.opts.ProgressFunc(completed, len(paths), path)
				progress.Unlock()
			}
		}(i, path)
	}
	wg.Wait()

	return results
}

// ParseFile reads and parses a single document of package pkg, using the
// cache when one is configured
func (w *Workspace) ParseFile(ctx context.Context, pkg, path string) *Result {
	start := time.Now()
	result := &Result{Path: path}
	defer func() {
		result.Duration = time.Since(start)
	}()

	kind, ok := parser.KindOf(path)
	if !ok {
		result.Err = &errors.IOError{Code: errors.ErrUnknownExtension, Path: path}
		return result
	}

	text, err := parser.ReadSource(path)
	if err != nil {
		result.Err = err
		w.opts.Metrics.observeParse(string(kind), false, time.Since(start))
		return result
	}

	name := parser.NameOf(path)
	result.Hash = w.hasher.Key(pkg, kind, name, text)

	if c := w.opts.Cache; c != nil {
		iface, hit, err := c.Lookup(ctx, path, result.Hash)
		if err != nil {
			w.logger.Warn("cache lookup failed", zap.String("path", path), zap.Error(err))
		}
		w.opts.Metrics.observeCache(hit)
		if hit {
			result.Interface = iface
			result.Cached = true
			w.logger.Debug("cache hit", zap.String("path", path))
			return result
		}
	}

	iface, err := parser.Parse(kind, pkg, name, text)
	w.opts.Metrics.observeParse(string(kind), err == nil, time.Since(start))
	if err != nil {
		result.Err = errors.WithFile(err, path)
		w.logger.Debug("parse failed", zap.String("path", path), zap.Error(err))
		return result
	}
	result.Interface = iface

	if c := w.opts.Cache; c != nil {
		if err := c.Set(ctx, path, result.Hash, iface); err != nil {
			w.logger.Warn("cache write failed", zap.String("path", path), zap.Error(err))
		}
	}

	w.logger.Debug("parsed interface",
		zap.String("path", path),
		zap.String("type", iface.FullName()))
	return result
}

func summarize(results []*Result, d time.Duration) Summary {
	s := Summary{TotalFiles: len(results), Duration: d}
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
		case r.Cached:
			s.Parsed++
			s.CacheHits++
		default:
			s.Parsed++
			s.CacheMisses++
		}
	}
	return s
}

// SortByName orders results by the interface full name, failures last
func SortByName(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Err != nil {
			return a.Path < b.Path
		}
		return a.Interface.FullName() < b.Interface.FullName()
	})
}
