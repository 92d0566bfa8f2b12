package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RigelNana/edumarket/services/resource-service/events"
	"github.com/RigelNana/edumarket/services/resource-service/models"
	"github.com/RigelNana/edumarket/services/resource-service/repository"
	"gorm.io/datatypes"
)

// ActivityRecorder turns resource events into activity rows for the
// resource owner's dashboard.
type ActivityRecorder struct {
	repo repository.ActivityRepository
}

func NewActivityRecorder(repo repository.ActivityRepository) *ActivityRecorder {
	return &ActivityRecorder{repo: repo}
}

// Handle has the events.Handler signature.
func (r *ActivityRecorder) Handle(ctx context.Context, e events.Event) error {
	if e.Owner == "" {
		return nil
	}
	a := &models.Activity{
		Owner:         e.Owner,
		Actor:         e.Actor,
		ResourceID:    e.ResourceID,
		ResourceTitle: e.ResourceTitle,
		Kind:          e.Kind,
	}
	if !e.OccurredAt.IsZero() {
		a.CreatedAt = e.OccurredAt
	}
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode activity metadata: %w", err)
		}
		a.Metadata = datatypes.JSON(raw)
	}
	if err := r.repo.Create(ctx, a); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}
