//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"group-lab/domain/event"

	"github.com/google/uuid"
)

// EventSink receives domain events after the operation producing them has
// been committed. A sink error never undoes the operation.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	GetSinksForGroup(groupID uuid.UUID) []EventSink
	Subscribe(observerID string, groupID uuid.UUID, sink EventSink)
	Unsubscribe(observerID string, groupID uuid.UUID)
}
