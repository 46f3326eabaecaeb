// Package audit writes the ledger's audit trail to a dedicated zap logger.
package audit

import (
	"context"

	"github.com/corebank/backend/internal/application/ledger"
	"github.com/corebank/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ZapAuditLogger records one structured log line per successful ledger mutation
type ZapAuditLogger struct {
	logger *zap.Logger
}

// NewZapAuditLogger creates an audit logger writing to l under the "audit" name
func NewZapAuditLogger(l *zap.Logger) *ZapAuditLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapAuditLogger{logger: l.Named("audit")}
}

// Record implements ledger.AuditLogger
func (a *ZapAuditLogger) Record(ctx context.Context, entry ledger.AuditEntry) error {
	fields := []zap.Field{
		zap.String("action", entry.Action),
		zap.String("entity_kind", entry.EntityKind),
		zap.String("entity_id", entry.EntityID.String()),
		zap.String("description", entry.Description),
	}
	if entry.OperatorID != uuid.Nil {
		fields = append(fields, zap.String("operator_id", entry.OperatorID.String()))
	} else {
		fields = append(fields, zap.String("operator_id", "system"))
	}
	logger.Enrich(ctx, a.logger).Info("Ledger audit", fields...)
	return nil
}

var _ ledger.AuditLogger = (*ZapAuditLogger)(nil)
