package notify

import "sync"

// ChangeOp identifies what kind of cache mutation triggered a change.
type ChangeOp string

const (
	OpLoad       ChangeOp = "load"
	OpCreate     ChangeOp = "create"
	OpUpdate     ChangeOp = "update"
	OpBulkUpdate ChangeOp = "bulk_update"
	OpDelete     ChangeOp = "delete"
	OpExternal   ChangeOp = "external"
	OpRefresh    ChangeOp = "refresh"
)

// Change describes a completed cache mutation.
type Change struct {
	Op        ChangeOp
	TicketIDs []string
}

// Callback observes cache changes.
type Callback func(Change)

// ChangeNotifier maintains registered callbacks and invokes all of them,
// synchronously and in registration order, after every cache state change.
// A panicking callback never prevents the remaining callbacks from running.
type ChangeNotifier struct {
	mu        sync.Mutex
	nextID    int
	order     []int
	callbacks map[int]Callback
}

// NewChangeNotifier creates an empty notifier.
func NewChangeNotifier() *ChangeNotifier {
	return &ChangeNotifier{callbacks: make(map[int]Callback)}
}

// Subscribe registers the callback and returns its unsubscribe handle.
// Unsubscribing twice is a no-op.
func (n *ChangeNotifier) Subscribe(callback Callback) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.order = append(n.order, id)
	n.callbacks[id] = callback

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.callbacks[id]; !ok {
			return
		}
		delete(n.callbacks, id)
		for i, registered := range n.order {
			if registered == id {
				n.order = append(n.order[:i], n.order[i+1:]...)
				break
			}
		}
	}
}

// Publish invokes every registered callback with the change.
func (n *ChangeNotifier) Publish(change Change) {
	n.mu.Lock()
	snapshot := make([]Callback, 0, len(n.order))
	for _, id := range n.order {
		snapshot = append(snapshot, n.callbacks[id])
	}
	n.mu.Unlock()

	for _, callback := range snapshot {
		invoke(callback, change)
	}
}

// Len returns the number of registered callbacks.
func (n *ChangeNotifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.callbacks)
}

func invoke(callback Callback, change Change) {
	defer func() {
		_ = recover()
	}()
	callback(change)
}
