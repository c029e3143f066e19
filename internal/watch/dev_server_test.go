package watch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/internal/compiler/metadata"
	"github.com/rclgo/msgidl/internal/workspace"
)

func newDevServer(t *testing.T, dir, addr string) *DevServer {
	t.Helper()
	ds, err := NewDevServer(DevServerConfig{
		Dir:      dir,
		Addr:     addr,
		Debounce: 50 * time.Millisecond,
		Workspace: workspace.Options{
			Metrics: workspace.NewMetrics("msgidl_test"),
			Logger:  zaptest.NewLogger(t),
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, ds.Stop(ctx))
	})
	return ds
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewDevServer_RequiresDir(t *testing.T) {
	_, err := NewDevServer(DevServerConfig{})
	assert.Error(t, err)
}

func TestDevServer_StartReportsInitialCheck(t *testing.T) {
	dir := setupPackage(t)
	writeFile(t, dir, "msg/Bad.msg", "flot32 y\n")

	ds := newDevServer(t, dir, "")
	result, err := ds.Start(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, ds.Addr())

	last := ds.Hub().Last()
	require.NotNil(t, last)
	assert.Equal(t, 1, last.Failed)
}

func TestDevServer_StartMissingDir(t *testing.T) {
	ds := newDevServer(t, filepath.Join(t.TempDir(), "missing"), "")
	_, err := ds.Start(context.Background())
	assert.Error(t, err)
}

func TestDevServer_Router(t *testing.T) {
	dir := setupPackage(t)
	writeFile(t, dir, "msg/Bad.msg", "flot32 y\n")

	ds := newDevServer(t, dir, "")
	_, err := ds.Start(context.Background())
	require.NoError(t, err)
	router := ds.Router()

	t.Run("healthz", func(t *testing.T) {
		rec := get(t, router, "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)

		var health healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, "demo_msgs", health.Package)
		assert.Equal(t, 3, health.Files)
		assert.Equal(t, 1, health.Failed)
		assert.NotEmpty(t, health.LastCheck)
	})

	t.Run("interfaces", func(t *testing.T) {
		rec := get(t, router, "/api/interfaces")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		meta, err := metadata.Deserialize(rec.Body.Bytes())
		require.NoError(t, err)
		require.Len(t, meta.Interfaces, 2)
		assert.Equal(t, "demo_msgs/msg/Point", meta.Interfaces[0].FullName)
	})

	t.Run("interfaces yaml", func(t *testing.T) {
		rec := get(t, router, "/api/interfaces?format=yaml")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

		meta, err := metadata.DeserializeYAML(rec.Body.Bytes())
		require.NoError(t, err)
		assert.Len(t, meta.Interfaces, 2)
	})

	t.Run("interfaces unknown format", func(t *testing.T) {
		rec := get(t, router, "/api/interfaces?format=xml")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("single interface", func(t *testing.T) {
		rec := get(t, router, "/api/interfaces/srv/Reset")
		require.Equal(t, http.StatusOK, rec.Code)

		var iface metadata.InterfaceMetadata
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &iface))
		assert.Equal(t, "srv", iface.Kind)
		assert.Len(t, iface.Messages, 2)

		rec = get(t, router, "/api/interfaces/msg/Missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("diagnostics", func(t *testing.T) {
		rec := get(t, router, "/api/diagnostics")
		require.Equal(t, http.StatusOK, rec.Code)

		var out errors.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.Equal(t, "error", out.Status)
		assert.Equal(t, 1, out.Summary.ErrorCount)
		require.Len(t, out.Errors, 1)
		assert.Equal(t, "E102", out.Errors[0].Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := get(t, router, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "msgidl_test_")
	})

	t.Run("pprof disabled", func(t *testing.T) {
		rec := get(t, router, "/debug/pprof/")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDevServer_Profiling(t *testing.T) {
	ds, err := NewDevServer(DevServerConfig{Dir: setupPackage(t), Profiling: true})
	require.NoError(t, err)
	t.Cleanup(func() { ds.Stop(context.Background()) })

	rec := get(t, ds.Router(), "/debug/pprof/")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, ds.Router(), "/debug/pprof/goroutine?debug=1")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDevServer_RechecksChangedFiles(t *testing.T) {
	dir := setupPackage(t)

	results := make(chan *CheckResult, 8)
	ds, err := NewDevServer(DevServerConfig{
		Dir:       dir,
		Addr:      "127.0.0.1:0",
		Debounce:  50 * time.Millisecond,
		Workspace: workspace.Options{Logger: zaptest.NewLogger(t)},
		OnResult:  func(r *CheckResult) { results <- r },
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ds.Stop(ctx)
	})

	_, err = ds.Start(context.Background())
	require.NoError(t, err)
	<-results
	require.NotEmpty(t, ds.Addr())

	resp, err := http.Get("http://" + ds.Addr() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "demo_msgs")

	conn := dialHub(t, "http://"+ds.Addr()+"/ws")
	replayed := readEvent(t, conn)
	assert.Equal(t, EventResult, replayed.Type)
	assert.Equal(t, 0, replayed.Failed)

	point := writeFile(t, dir, "msg/Point.msg", "float64 x\nflot32 y\n")

	select {
	case r := <-results:
		assert.Equal(t, []string{point}, r.Files)
		assert.Equal(t, 1, r.Failed)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for recheck")
	}

	// skip anything left over from the initial check
	checking := readEvent(t, conn)
	for checking.Type != EventChecking {
		checking = readEvent(t, conn)
	}
	assert.Equal(t, []string{point}, checking.Files)

	result := readEvent(t, conn)
	assert.Equal(t, EventResult, result.Type)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "E102", result.Errors[0].Code)
}

func TestDevServer_InterfaceFiles(t *testing.T) {
	dir := setupPackage(t)
	ds := newDevServer(t, dir, "")

	files := ds.interfaceFiles([]string{
		filepath.Join(dir, "msg", "Point.msg"),
		filepath.Join(dir, "Stray.msg"),
		filepath.Join(dir, "srv", "Reset.srv"),
		filepath.Join(dir, "other", "Thing.msg"),
	})
	assert.Equal(t, []string{
		filepath.Join(dir, "msg", "Point.msg"),
		filepath.Join(dir, "srv", "Reset.srv"),
	}, files)
}
