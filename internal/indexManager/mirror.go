package indexManager

import (
	"context"
	"time"

	"github.com/akolanti/GoIndex/internal/domain/commonModels"
	"github.com/akolanti/GoIndex/internal/metrics"
)

// The mirror is best effort: failures are logged and counted, never returned.

func (s *service) mirrorUpsert(ctx context.Context, passages []commonModels.Passage) {
	if s.replica == nil || len(passages) == 0 {
		return
	}
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.settings.GatewayCallTimeout)
	defer cancel()

	start := time.Now()
	err := s.replica.UpsertPassages(mctx, passages)
	metrics.CaptureExecutionMetrics("mirror_upsert", time.Since(start))
	if err != nil {
		metrics.IncrementMirrorFailures()
		s.logger.WithTrace(ctx).Warn("mirror upsert failed", "docId", passages[0].DocumentId, "error", err)
	}
}

func (s *service) mirrorDelete(ctx context.Context, docId string) {
	if s.replica == nil {
		return
	}
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.settings.GatewayCallTimeout)
	defer cancel()

	start := time.Now()
	err := s.replica.DeleteDocument(mctx, docId)
	metrics.CaptureExecutionMetrics("mirror_delete", time.Since(start))
	if err != nil {
		metrics.IncrementMirrorFailures()
		s.logger.WithTrace(ctx).Warn("mirror delete failed", "docId", docId, "error", err)
	}
}
