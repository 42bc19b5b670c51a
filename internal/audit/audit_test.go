package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ezfintutor/tutormail/internal/observability/logger"
)

func TestLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core))

	Log(ctx, "", EventTemplateDeleted, "welcome_email", zap.String("request_id", "r1"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, true, fields["audit"])
	require.Equal(t, EventTemplateDeleted, fields["event"])
	require.Equal(t, "anonymous", fields["actor"])
	require.Equal(t, "welcome_email", fields["template"])
	require.Equal(t, "r1", fields["request_id"])
}
