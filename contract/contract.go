//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
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

// PresenceOracle answers whether a user is currently visible anywhere in
// the system. The expiry rule keys room liveness to host activity, not to
// the room's own traffic.
type PresenceOracle interface {
	IsUserActiveAnywhere(userID string) bool
}

// IdentityProvider resolves a user id to a display nickname for
// engine-authored announcements. Implementations should fall back to the
// raw id when the user is unknown.
type IdentityProvider interface {
	Nickname(userID string) string
}

// NotificationSink receives the operator-facing explanation produced when
// an enforcement action is taken. Delivery is best-effort.
type NotificationSink interface {
	Notify(userID, message string)
}
