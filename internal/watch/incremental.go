package watch

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/internal/compiler/metadata"
	"github.com/rclgo/msgidl/internal/workspace"
)

// IncrementalChecker keeps the last parse result of every file in a
// package and re-parses only the files that change
type IncrementalChecker struct {
	dir  string
	pkg  string
	opts workspace.Options
	ws   *workspace.Workspace

	mu        sync.RWMutex
	results   map[string]*workspace.Result
	lastCheck time.Time
}

// CheckResult holds the outcome of a full or incremental check
type CheckResult struct {
	// Files are the files parsed by this check
	Files []string
	// Removed are files dropped because they no longer exist
	Removed []string
	// Errors are the failures among Files, with source context
	Errors []errors.CompilerError
	// Total and Failed count the whole package after the check
	Total     int
	Failed    int
	CacheHits int
	Duration  time.Duration
}

// Success reports whether the package is free of errors after the check
func (r *CheckResult) Success() bool {
	return r.Failed == 0
}

// NewIncrementalChecker creates a checker for the package at dir. The
// package name is taken from opts or derived from the directory.
func NewIncrementalChecker(dir string, opts workspace.Options) *IncrementalChecker {
	if opts.Package == "" {
		opts.Package = workspace.PackageName(dir)
	}
	return &IncrementalChecker{
		dir:     dir,
		pkg:     opts.Package,
		opts:    opts,
		ws:      workspace.New(opts),
		results: make(map[string]*workspace.Result),
	}
}

// Package returns the package name documents are parsed under
func (ic *IncrementalChecker) Package() string {
	return ic.pkg
}

// FullCheck discards remembered results and parses every file of the
// package
func (ic *IncrementalChecker) FullCheck(ctx context.Context) (*CheckResult, error) {
	start := time.Now()

	pkg, err := ic.ws.Load(ctx, ic.dir)
	if err != nil {
		return nil, err
	}

	ic.mu.Lock()
	ic.results = make(map[string]*workspace.Result, len(pkg.Results))
	for _, r := range pkg.Results {
		ic.results[r.Path] = r
	}
	ic.mu.Unlock()

	return ic.finish(pkg.Results, nil, start), nil
}

// Recheck re-parses the given files. Files that no longer exist are
// removed from the package.
func (ic *IncrementalChecker) Recheck(ctx context.Context, files []string) *CheckResult {
	start := time.Now()

	var existing, removed []string
	for _, file := range files {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			removed = append(removed, file)
			continue
		}
		existing = append(existing, file)
	}

	results := ic.ws.ParseFiles(ctx, ic.pkg, existing)

	ic.mu.Lock()
	for _, file := range removed {
		delete(ic.results, file)
	}
	for _, r := range results {
		ic.results[r.Path] = r
	}
	ic.mu.Unlock()

	if c := ic.opts.Cache; c != nil && len(removed) > 0 {
		if err := c.Forget(ctx, removed...); err != nil && ic.opts.Logger != nil {
			ic.opts.Logger.Warn("failed to drop cache entries of removed files", zap.Error(err))
		}
	}

	return ic.finish(results, removed, start)
}

func (ic *IncrementalChecker) finish(results []*workspace.Result, removed []string, start time.Time) *CheckResult {
	res := &CheckResult{
		Files:   make([]string, 0, len(results)),
		Removed: removed,
		Errors:  make([]errors.CompilerError, 0),
	}
	for _, r := range results {
		res.Files = append(res.Files, r.Path)
		if r.Cached {
			res.CacheHits++
		}
		if r.Err != nil {
			res.Errors = append(res.Errors, errors.EnrichErrorFromFile(errors.ToCompilerError(r.Err)))
		}
	}

	ic.mu.Lock()
	res.Total = len(ic.results)
	for _, r := range ic.results {
		if r.Err != nil {
			res.Failed++
		}
	}
	ic.lastCheck = time.Now()
	ic.mu.Unlock()

	res.Duration = time.Since(start)
	return res
}

// Snapshot returns the current result of every file, sorted by path
func (ic *IncrementalChecker) Snapshot() []*workspace.Result {
	ic.mu.RLock()
	defer ic.mu.RUnlock()

	out := make([]*workspace.Result, 0, len(ic.results))
	for _, r := range ic.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Diagnostics returns the outstanding failures of the package
func (ic *IncrementalChecker) Diagnostics() []errors.CompilerError {
	out := make([]errors.CompilerError, 0)
	for _, r := range ic.Snapshot() {
		if r.Err != nil {
			out = append(out, errors.ToCompilerError(r.Err))
		}
	}
	return out
}

// Metadata describes the successfully parsed documents of the package
func (ic *IncrementalChecker) Metadata() *metadata.Metadata {
	var ifaces []metadata.InterfaceMetadata
	for _, r := range ic.Snapshot() {
		if r.Err == nil {
			ifaces = append(ifaces, metadata.FromInterface(r.Interface, r.Path))
		}
	}
	return metadata.Extract(ifaces...)
}

// LastCheck returns when the last check finished
func (ic *IncrementalChecker) LastCheck() time.Time {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.lastCheck
}
