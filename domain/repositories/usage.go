package repositories

import (
	"context"

	"github.com/gospelstack/sermon-audio/domain/entities"
)

// UsageRecorder appends metering records. Write-only telemetry; the core
// never reads these back.
type UsageRecorder interface {
	Record(ctx context.Context, record *entities.UsageRecord) error
}
