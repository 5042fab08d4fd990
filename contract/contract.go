//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/PY0226H/aicomm/domain"
	"github.com/PY0226H/aicomm/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// TokenVerifier is whatever holds a verification key. Each service's
// application state implements it; the auth middleware depends on nothing else.
type TokenVerifier interface {
	Verify(token string) (domain.User, error)
}

type RegistryStats struct {
	Users       int
	Subscribers int
}

// IRegistry is the publish-side view of the per-user channel registry.
// The subscribe side hands out concrete subscriptions and lives in runtime.
type IRegistry interface {
	Publish(userID uint64, e event.AppEvent) bool
	Stats() RegistryStats
}
