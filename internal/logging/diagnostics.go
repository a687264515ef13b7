package logging

import (
	"context"
	stderrors "errors"

	"github.com/conneroisu/semtex/internal/errors"
)

// LogDiagnostic logs a located diagnostic at the level matching its
// severity.
func LogDiagnostic(logger Logger, ctx context.Context, d errors.Diagnostic) {
	fields := []interface{}{"file", d.File, "line", d.Line}

	switch d.Severity {
	case errors.ErrorSeverityError:
		logger.Error(ctx, nil, d.Message, fields...)
	case errors.ErrorSeverityWarning:
		logger.Warn(ctx, nil, d.Message, fields...)
	default:
		logger.Info(ctx, d.Message, fields...)
	}
}

// LogError logs err, adding the code and location of a SemtexError as
// fields.
func LogError(logger Logger, ctx context.Context, err error, msg string, fields ...interface{}) {
	var se *errors.SemtexError
	if stderrors.As(err, &se) {
		fields = append(fields, "error_type", string(se.Type), "error_code", se.Code)
		if se.FilePath != "" {
			fields = append(fields, "file", se.FilePath, "line", se.Line)
		}
	}
	logger.Error(ctx, err, msg, fields...)
}
