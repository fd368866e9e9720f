//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-broadcaster/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
	Restarts() uint64
}

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

// IDispatcher pushes one frame to a point-in-time set of subscribers.
// Dispatch must return without waiting for delivery.
type IDispatcher interface {
	Dispatch(frame domain.Frame, targets []*domain.Subscriber)
}

// ICoordinator is the single serialization point for registry mutations.
// Every method goes through the same command queue.
type ICoordinator interface {
	Subscribe(ctx context.Context, subscriber *domain.Subscriber) error
	Unsubscribe(ctx context.Context, userID domain.UserID, name string, subscriberID domain.SubscriberID) error
	Publish(ctx context.Context, text string, userID domain.UserID, name string) error
	Snapshot(ctx context.Context) ([]*domain.Subscriber, error)
	Stats(ctx context.Context) (domain.CoordinatorStats, error)
}

// IHealthProbe produces a point-in-time health report of the server.
type IHealthProbe interface {
	Report(ctx context.Context) domain.HealthReport
}

// IServingStatus is where health transitions are published (gRPC health service).
type IServingStatus interface {
	SetServing(serving bool)
}
