// Package logging builds the process logger and the error reporter that
// writes attendance failures to it.
package logging

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"attendance/pkg/attendance"
)

// New returns a production JSON logger, at debug level when debug is set.
func New(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

// Reporter logs each report once. Unknown names are an expected user
// mistake and go out as warnings; everything else is an error.
type Reporter struct {
	logger *zap.Logger
}

func NewReporter(logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{logger: logger}
}

func (r *Reporter) Report(rep attendance.Report) {
	fields := make([]zap.Field, 0, len(rep.Context)+1)
	fields = append(fields, zap.String("kind", string(rep.Kind)))

	keys := make([]string, 0, len(rep.Context))
	for k := range rep.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.String(k, rep.Context[k]))
	}

	switch rep.Kind {
	case attendance.KindNotFound, attendance.KindInvalidData:
		r.logger.Warn(rep.Message, fields...)
	default:
		r.logger.Error(rep.Message, fields...)
	}
}

var _ attendance.Reporter = (*Reporter)(nil)
