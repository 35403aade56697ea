package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/stretchr/testify/assert"
)

type sampleEvent struct {
	domain.BaseEvent
}

type sampleAggregate struct {
	domain.BaseAggregateRoot
}

func TestBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	at := time.Date(2024, 1, 7, 10, 0, 0, 0, time.FixedZone("X", 3600))

	event := sampleEvent{BaseEvent: domain.NewBaseEvent(aggregateID, "Sample", "sample.created", at)}

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "Sample", event.AggregateType())
	assert.Equal(t, "sample.created", event.RoutingKey())
	assert.Equal(t, time.UTC, event.OccurredAt().Location())

	meta := domain.EventMetadata{CorrelationID: uuid.New(), UserID: uuid.New()}
	event.SetMetadata(meta)
	assert.Equal(t, meta, event.Metadata())
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	now := time.Now()
	agg := &sampleAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot(domain.NewBaseEntity(now))}
	assert.Empty(t, agg.DomainEvents())

	agg.AddDomainEvent(&sampleEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "Sample", "sample.a", now)})
	agg.AddDomainEvent(&sampleEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "Sample", "sample.b", now)})
	assert.Len(t, agg.DomainEvents(), 2)

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseEntity_Touch(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entity := domain.NewBaseEntity(created)
	assert.Equal(t, created, entity.UpdatedAt())

	entity.Touch(created.Add(-time.Hour))
	assert.Equal(t, created, entity.UpdatedAt(), "touch never moves backwards")

	later := created.Add(time.Hour)
	entity.Touch(later)
	assert.Equal(t, later, entity.UpdatedAt())
	assert.Equal(t, created, entity.CreatedAt())
}
