package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/outbox"
	"github.com/starfocus/starfocus/pkg/observability"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// commandMetadata ties the events of one command together. The correlation
// id of the calling CLI command or MCP request is reused when it is a UUID.
func commandMetadata(ctx context.Context, userID uuid.UUID) domain.EventMetadata {
	correlationID, err := uuid.Parse(observability.CorrelationIDFromContext(ctx))
	if err != nil {
		correlationID = uuid.New()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New(),
		UserID:        userID,
	}
}

// RecordEvents stamps events with the command's metadata and stores them in
// the outbox inside the caller's unit of work.
func RecordEvents(ctx context.Context, repo outbox.Repository, userID uuid.UUID, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	metadata := commandMetadata(ctx, userID)
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	return repo.SaveBatch(ctx, msgs)
}
