package logging

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/semtex/internal/errors"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{input: "debug", want: LevelDebug},
		{input: "INFO", want: LevelInfo},
		{input: "", want: LevelInfo},
		{input: "warning", want: LevelWarn},
		{input: " error ", want: LevelError},
		{input: "loud", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})
	ctx := context.Background()

	logger.Debug(ctx, "hidden debug")
	logger.Info(ctx, "hidden info")
	logger.Warn(ctx, nil, "shown warning")
	logger.Error(ctx, stderrors.New("boom"), "shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warning")
	assert.Contains(t, out, "shown error")
	assert.Contains(t, out, "error=boom")
	assert.Equal(t, LevelWarn, logger.Level())
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf}).
		WithRunID("run-1").
		WithComponent("pipeline").
		With("worker", 3)

	logger.Info(context.Background(), "processing", "file", "main.stex", "dangling")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "processing", record["msg"])
	assert.Equal(t, "run-1", record["run_id"])
	assert.Equal(t, "pipeline", record["component"])
	assert.Equal(t, float64(3), record["worker"])
	assert.Equal(t, "main.stex", record["file"])
	assert.NotContains(t, record, "dangling")
}

func TestLogDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Output: &buf})

	LogDiagnostic(logger, context.Background(), errors.NewWarning("doc.stex", 4, "mirror ignored"))

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "level=WARN")
	assert.Contains(t, line, `msg="mirror ignored"`)
	assert.Contains(t, line, "file=doc.stex")
	assert.Contains(t, line, "line=4")
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Output: &buf})

	err := errors.NewParseError(errors.ErrCodeArity, "doc.stex", 9, "Too many arguments")
	LogError(logger, context.Background(), err, "expansion failed")

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "error_code=PARSE_ARITY")
	assert.Contains(t, out, "line=9")
}

func TestPerfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})

	d := StartOperation(logger, "build").End(context.Background(), "files", 2)
	assert.GreaterOrEqual(t, int64(d), int64(0))
	assert.Contains(t, buf.String(), "operation=build")
	assert.Contains(t, buf.String(), "files=2")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error(context.Background(), stderrors.New("x"), "dropped")
	assert.Equal(t, LevelError, logger.Level())
}
