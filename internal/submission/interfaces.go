package submission

import (
	"context"
	"time"

	"sheet2form/internal/app"
)

// RowSubmitter defines the single-row submission used by Controller
type RowSubmitter interface {
	Submit(ctx context.Context, formAddress string, row app.Row, postDelay time.Duration) Outcome
}

// EventSink receives status events from Controller
type EventSink interface {
	Publish(e Event)
}
