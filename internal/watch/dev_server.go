package watch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rclgo/msgidl/internal/workspace"
)

// DevServerConfig holds configuration for the dev server
type DevServerConfig struct {
	// Dir is the package directory to watch
	Dir string
	// Addr is the status server address; empty disables the server
	Addr string
	// Debounce is the quiet period before a batch of changes is checked
	Debounce time.Duration
	// Profiling mounts pprof handlers under /debug/pprof
	Profiling bool
	// Auth, when set, guards every route except /healthz
	Auth *TokenAuth
	// Workspace configures parsing
	Workspace workspace.Options
	// OnResult is called after every check, serialized
	OnResult func(*CheckResult)
}

// DevServer re-checks a package whenever its interface files change and
// publishes each result to status clients
type DevServer struct {
	config  DevServerConfig
	checker *IncrementalChecker
	watcher *FileWatcher
	hub     *EventHub
	logger  *zap.Logger

	httpServer *http.Server
	listener   net.Listener

	checkMutex sync.Mutex
	stopOnce   sync.Once
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewDevServer creates a dev server for the package at config.Dir
func NewDevServer(config DevServerConfig) (*DevServer, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("package directory is required")
	}
	logger := config.Workspace.Logger
	if logger == nil {
		logger = zap.NewNop()
		config.Workspace.Logger = logger
	}

	ds := &DevServer{
		config:  config,
		checker: NewIncrementalChecker(config.Dir, config.Workspace),
		hub:     NewEventHub(logger.Named("events")),
		logger:  logger,
	}

	var err error
	ds.watcher, err = NewFileWatcher(config.Dir, WatcherConfig{
		Debounce: config.Debounce,
		Logger:   logger.Named("watcher"),
	}, ds.handleFileChange)
	if err != nil {
		ds.hub.Close()
		return nil, err
	}

	return ds, nil
}

// Checker returns the underlying incremental checker
func (ds *DevServer) Checker() *IncrementalChecker {
	return ds.checker
}

// Hub returns the event hub status clients connect to
func (ds *DevServer) Hub() *EventHub {
	return ds.hub
}

// Start runs a full check, then starts watching and serving status. A
// package with errors is not a start failure; the returned result
// carries them.
func (ds *DevServer) Start(ctx context.Context) (*CheckResult, error) {
	ds.ctx, ds.cancel = context.WithCancel(ctx)

	ds.hub.NotifyChecking(ds.checker.Package(), nil)
	result, err := ds.checker.FullCheck(ds.ctx)
	if err != nil {
		return nil, fmt.Errorf("initial check failed: %w", err)
	}
	ds.report(result)

	if err := ds.watcher.Start(); err != nil {
		return nil, err
	}

	if ds.config.Addr != "" {
		if err := ds.startHTTPServer(); err != nil {
			ds.watcher.Stop()
			return nil, err
		}
	}

	ds.logger.Info("watching for changes",
		zap.String("package", ds.checker.Package()),
		zap.String("dir", ds.config.Dir))

	return result, nil
}

func (ds *DevServer) startHTTPServer() error {
	listener, err := net.Listen("tcp", ds.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", ds.config.Addr, err)
	}
	ds.listener = listener

	ds.httpServer = &http.Server{
		Handler:           ds.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ds.wg.Add(1)
	go func() {
		defer ds.wg.Done()
		if err := ds.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			ds.logger.Error("status server failed", zap.Error(err))
		}
	}()

	ds.logger.Info("status server listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound status server address, or "" when it is not
// running
func (ds *DevServer) Addr() string {
	if ds.listener == nil {
		return ""
	}
	return ds.listener.Addr().String()
}

// Stop stops watching and shuts the status server down
func (ds *DevServer) Stop(ctx context.Context) error {
	var err error
	ds.stopOnce.Do(func() {
		if ds.cancel != nil {
			ds.cancel()
		}
		if werr := ds.watcher.Stop(); werr != nil {
			err = werr
		}
		ds.hub.Close()
		if ds.httpServer != nil {
			if serr := ds.httpServer.Shutdown(ctx); serr != nil && err == nil {
				err = serr
			}
		}
		ds.wg.Wait()

		// wait out a check already in flight
		ds.checkMutex.Lock()
		ds.checkMutex.Unlock()
	})
	return err
}

// handleFileChange re-checks a debounced batch of files. Batches are
// checked one at a time, in arrival order.
func (ds *DevServer) handleFileChange(files []string) error {
	files = ds.interfaceFiles(files)
	if len(files) == 0 {
		return nil
	}

	ds.checkMutex.Lock()
	defer ds.checkMutex.Unlock()

	ctx := ds.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	pkg := ds.checker.Package()
	ds.logger.Info("files changed", zap.String("package", pkg), zap.Strings("files", files))
	ds.hub.NotifyChecking(pkg, files)

	ds.report(ds.checker.Recheck(ctx, files))
	return nil
}

// interfaceFiles keeps the files that live in an interface directory of
// the package
func (ds *DevServer) interfaceFiles(files []string) []string {
	root := filepath.Clean(ds.config.Dir)
	out := files[:0:0]
	for _, file := range files {
		parent := filepath.Dir(file)
		if filepath.Dir(parent) != root {
			continue
		}
		for _, sub := range workspace.InterfaceDirs {
			if filepath.Base(parent) == sub {
				out = append(out, file)
				break
			}
		}
	}
	return out
}

func (ds *DevServer) report(result *CheckResult) {
	pkg := ds.checker.Package()
	if result.Success() {
		ds.logger.Info("check passed",
			zap.String("package", pkg),
			zap.Int("files", result.Total),
			zap.Duration("duration", result.Duration))
	} else {
		ds.logger.Warn("check failed",
			zap.String("package", pkg),
			zap.Int("files", result.Total),
			zap.Int("failed", result.Failed),
			zap.Duration("duration", result.Duration))
	}

	ds.hub.NotifyResult(pkg, result)
	if ds.config.OnResult != nil {
		ds.config.OnResult(result)
	}
}
