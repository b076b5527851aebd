package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/taskhub/internal/observability/logger"
)

func TestLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).With(logger.RequestID("r-1")))

	Log(ctx, EventLoginFailure, logger.Provider("EMAIL"))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "audit", e.LoggerName)
	fields := e.ContextMap()
	assert.Equal(t, "login_failure", fields["event"])
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "EMAIL", fields["provider"])
}
