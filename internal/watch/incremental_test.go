package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclgo/msgidl/internal/compiler/cache"
	"github.com/rclgo/msgidl/internal/workspace"
)

func TestIncrementalChecker_FullCheck(t *testing.T) {
	dir := setupPackage(t)
	checker := NewIncrementalChecker(dir, workspace.Options{Workers: 2})
	assert.Equal(t, "demo_msgs", checker.Package())
	assert.True(t, checker.LastCheck().IsZero())

	result, err := checker.FullCheck(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Equal(t, 2, result.Total)
	assert.Len(t, result.Files, 2)
	assert.Empty(t, result.Errors)
	assert.False(t, checker.LastCheck().IsZero())

	meta := checker.Metadata()
	require.Len(t, meta.Interfaces, 2)
	assert.Equal(t, "Point", meta.Interfaces[0].Name)
	assert.Equal(t, "Reset", meta.Interfaces[1].Name)
}

func TestIncrementalChecker_FullCheckMissingDir(t *testing.T) {
	checker := NewIncrementalChecker(filepath.Join(t.TempDir(), "missing"), workspace.Options{})
	_, err := checker.FullCheck(context.Background())
	assert.Error(t, err)
}

func TestIncrementalChecker_RecheckBreakAndFix(t *testing.T) {
	dir := setupPackage(t)
	checker := NewIncrementalChecker(dir, workspace.Options{})
	_, err := checker.FullCheck(context.Background())
	require.NoError(t, err)

	point := writeFile(t, dir, "msg/Point.msg", "float64 x\nflot32 y\n")
	result := checker.Recheck(context.Background(), []string{point})

	assert.False(t, result.Success())
	assert.Equal(t, []string{point}, result.Files)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "E102", result.Errors[0].Code)
	assert.Equal(t, 2, result.Errors[0].Location.Line)

	require.Len(t, checker.Diagnostics(), 1)
	assert.Len(t, checker.Metadata().Interfaces, 1)

	writeFile(t, dir, "msg/Point.msg", "float64 x\nfloat32 y\n")
	result = checker.Recheck(context.Background(), []string{point})

	assert.True(t, result.Success())
	assert.Empty(t, result.Errors)
	assert.Empty(t, checker.Diagnostics())
	assert.Len(t, checker.Metadata().Interfaces, 2)
}

func TestIncrementalChecker_RecheckAddAndRemove(t *testing.T) {
	dir := setupPackage(t)
	store := cache.NewMemoryStore()
	memo := cache.NewInterfaceCache(store)
	checker := NewIncrementalChecker(dir, workspace.Options{Cache: memo})
	_, err := checker.FullCheck(context.Background())
	require.NoError(t, err)

	pose := writeFile(t, dir, "msg/Pose.msg", "Point position\n")
	result := checker.Recheck(context.Background(), []string{pose})
	assert.True(t, result.Success())
	assert.Equal(t, 3, result.Total)

	stored := store.Len()
	point := filepath.Join(dir, "msg", "Point.msg")
	require.NoError(t, os.Remove(point))
	result = checker.Recheck(context.Background(), []string{point})

	assert.Empty(t, result.Files)
	assert.Equal(t, []string{point}, result.Removed)
	assert.Equal(t, 2, result.Total)

	_, cached := memo.Get(point)
	assert.False(t, cached)
	assert.Equal(t, stored-1, store.Len(), "removed file is dropped from the store")

	for _, r := range checker.Snapshot() {
		assert.NotEqual(t, point, r.Path)
	}
}

func TestIncrementalChecker_CacheHits(t *testing.T) {
	dir := setupPackage(t)
	checker := NewIncrementalChecker(dir, workspace.Options{Cache: cache.NewInterfaceCache(nil)})

	first, err := checker.FullCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)

	second, err := checker.FullCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits)
}
