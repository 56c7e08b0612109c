package hook

import (
	"context"

	"github.com/xcreports/xcallure/internal/model"
)

// ReportListener is notified after a converted report has been stored.
// Listener failures are logged and never fail the ingestion.
type ReportListener interface {
	Name() string
	Init() error
	ReportStored(ctx context.Context, report model.TestResult)
}
