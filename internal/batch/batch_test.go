package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/smartmap-tools/holderscan/internal/pipeline"
	"github.com/smartmap-tools/holderscan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrchestrator(t *testing.T) *pipeline.Orchestrator {
	t.Helper()
	orch, err := pipeline.NewBuilder().Build()
	require.NoError(t, err)
	return orch
}

func writeScenes(t *testing.T, dir string) []string {
	t.Helper()
	flat := testutil.NewScene(testutil.DefaultSceneConfig())
	pole := testutil.PoleScene(t)
	return []string{
		testutil.SaveSceneToDir(t, pole, dir, "H100.png"),
		testutil.SaveSceneToDir(t, flat, dir, "H205.png"),
		testutil.SaveSceneToDir(t, flat, dir, "H311.png"),
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	writeScenes(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o750))

	files, err := ListImages(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	// sorted by name
	assert.Equal(t, "H100.png", filepath.Base(files[0]))
	assert.Equal(t, "H311.png", filepath.Base(files[2]))
}

func TestListImagesMissingDir(t *testing.T) {
	_, err := ListImages("/does/not/exist")
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeScenes(t, dir)

	report, err := Run(context.Background(), dir, testOrchestrator(t), 2, nil)
	require.NoError(t, err)

	assert.Equal(t, "normal", report.Profile)
	require.Len(t, report.Items, 3)
	assert.Equal(t, "H100", report.Items[0].HolderID)
	assert.Equal(t, 640, report.Items[0].Width)
	assert.Equal(t, 480, report.Items[0].Height)
	assert.Equal(t, 3, report.Summary.TotalImages)
	assert.Equal(t, 0, report.Summary.Failed)
}

func TestRunRecordsPerItemFailures(t *testing.T) {
	dir := t.TempDir()
	writeScenes(t, dir)
	// a corrupt image must be reported, not abort the batch
	require.NoError(t, os.WriteFile(filepath.Join(dir, "H999.png"), []byte("not a png"), 0o600))

	report, err := Run(context.Background(), dir, testOrchestrator(t), 2, nil)
	require.NoError(t, err)
	require.Len(t, report.Items, 4)
	assert.Equal(t, 1, report.Summary.Failed)

	var failed *ItemReport
	for i := range report.Items {
		if report.Items[i].HolderID == "H999" {
			failed = &report.Items[i]
		}
	}
	require.NotNil(t, failed)
	assert.NotEmpty(t, failed.Error)
}

func TestRunEmptyDir(t *testing.T) {
	_, err := Run(context.Background(), t.TempDir(), testOrchestrator(t), 2, nil)
	require.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeScenes(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := runtime.NumGoroutine()
	_, err := Run(ctx, dir, testOrchestrator(t), 1, func(done, total int) {})
	require.Error(t, err)

	// the progress drainer must exit with the run
	deadline := time.Now().Add(time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)
}

func TestRunProgress(t *testing.T) {
	dir := t.TempDir()
	writeScenes(t, dir)

	var mu sync.Mutex
	var last int
	_, err := Run(context.Background(), dir, testOrchestrator(t), 1, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		last = done
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, last)
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	writeScenes(t, dir)

	report, err := Run(context.Background(), dir, testOrchestrator(t), 2, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteReport(report, path))

	data, err := os.ReadFile(path) //nolint:gosec // test-owned path
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.Summary.TotalImages, decoded.Summary.TotalImages)
}
