package runtime

import (
	"chat-broadcaster/domain"

	"github.com/samber/lo"
)

type connections map[domain.SubscriberID]*domain.Subscriber

// Registry maps each user to the set of their live subscribers.
// A user key exists if and only if its set is non-empty.
//
// Registry has no lock: it is owned by the Coordinator goroutine and must
// never be touched from anywhere else.
type Registry struct {
	users map[domain.UserID]connections
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[domain.UserID]connections)}
}

// Add registers a subscriber and reports whether it is the user's first live connection.
// Adding an id that is already present is a no-op.
func (r *Registry) Add(subscriber *domain.Subscriber) bool {
	conns, ok := r.users[subscriber.UserID]
	if !ok {
		r.users[subscriber.UserID] = connections{subscriber.ID: subscriber}
		return true
	}
	if _, exists := conns[subscriber.ID]; !exists {
		conns[subscriber.ID] = subscriber
	}
	return false
}

// Remove drops one connection of a user.
// removed is false when the id was not registered; last is true when the
// user has no connection left, in which case the user key is pruned.
func (r *Registry) Remove(userID domain.UserID, subscriberID domain.SubscriberID) (removed, last bool) {
	conns, ok := r.users[userID]
	if !ok {
		return false, false
	}
	if _, exists := conns[subscriberID]; !exists {
		return false, false
	}
	delete(conns, subscriberID)

	if len(conns) == 0 {
		delete(r.users, userID)
		return true, true
	}
	return true, false
}

// Snapshot copies the current subscribers so they can be used outside the coordinator.
func (r *Registry) Snapshot() []*domain.Subscriber {
	return lo.Flatten(lo.MapToSlice(r.users, func(_ domain.UserID, conns connections) []*domain.Subscriber {
		return lo.Values(conns)
	}))
}

func (r *Registry) Users() int {
	return len(r.users)
}

func (r *Registry) Len() int {
	return lo.SumBy(lo.Values(r.users), func(conns connections) int { return len(conns) })
}

func (r *Registry) Connections(userID domain.UserID) int {
	return len(r.users[userID])
}
