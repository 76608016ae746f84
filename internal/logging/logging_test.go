package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"attendance/pkg/attendance"
)

func TestReporter_LogsEachReportOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewReporter(zap.New(core))

	r.Report(attendance.Report{
		Kind:    attendance.KindNotFound,
		Message: `location "Pool" not found`,
		Context: map[string]string{"op": "check_in", "name": "Pool"},
	})
	r.Report(attendance.Report{Kind: attendance.KindNetwork, Message: "fetch data.json: connection refused"})

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, `location "Pool" not found`, entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "not_found", ctx["kind"])
	assert.Equal(t, "Pool", ctx["name"])
	assert.Equal(t, "check_in", ctx["op"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "network", entries[1].ContextMap()["kind"])
}

func TestNew(t *testing.T) {
	l, err := New(true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New(false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
