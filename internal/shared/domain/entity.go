package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity is a domain object with identity.
type Entity interface {
	ID() uuid.UUID
	CreatedAt() time.Time
	UpdatedAt() time.Time
}

// BaseEntity carries the identity and timestamps shared by all entities.
type BaseEntity struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

// NewBaseEntity creates an entity with a fresh ID stamped at the given time.
func NewBaseEntity(at time.Time) BaseEntity {
	return NewBaseEntityWithID(uuid.New(), at)
}

// NewBaseEntityWithID creates an entity with a caller-supplied ID.
func NewBaseEntityWithID(id uuid.UUID, at time.Time) BaseEntity {
	at = at.UTC()
	return BaseEntity{id: id, createdAt: at, updatedAt: at}
}

// RehydrateBaseEntity recreates an entity from persisted state.
func RehydrateBaseEntity(id uuid.UUID, createdAt, updatedAt time.Time) BaseEntity {
	return BaseEntity{id: id, createdAt: createdAt, updatedAt: updatedAt}
}

func (e BaseEntity) ID() uuid.UUID        { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }
func (e BaseEntity) UpdatedAt() time.Time { return e.updatedAt }

// Touch moves updatedAt forward to at.
func (e *BaseEntity) Touch(at time.Time) {
	at = at.UTC()
	if at.After(e.updatedAt) {
		e.updatedAt = at
	}
}
