//go:build integration
// +build integration

package integration_tests

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/semtex/internal/expand"
	"github.com/conneroisu/semtex/internal/logging"
	"github.com/conneroisu/semtex/internal/pipeline"
	"github.com/conneroisu/semtex/internal/replacer"
)

// createTestDocument writes content to dir/name and returns the path.
func createTestDocument(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newTestPipeline returns a pipeline with the built-in commands and a
// short poll interval.
func newTestPipeline(workers int) *pipeline.Pipeline {
	config := pipeline.DefaultConfig()
	config.Workers = workers
	config.PollInterval = 5 * time.Millisecond
	return pipeline.New(expand.New(replacer.Default(nil), 0), config, logging.Discard())
}

// waitForContent polls path until it holds want or the timeout passes.
func waitForContent(t *testing.T, path, want string, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		got, err := os.ReadFile(path)
		return err == nil && string(got) == want
	}, timeout, 20*time.Millisecond, "waiting for %s", path)
}
