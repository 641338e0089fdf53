package segment

// EventType identifies a store mutation.
type EventType int

const (
	EventAdded EventType = iota
	EventUpdated
	EventRemoved
	EventCleared
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventRemoved:
		return "removed"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Event describes one store mutation. Record carries a clone of the mutated
// segment for added/updated events; Name identifies removed segments.
type Event struct {
	Type   EventType
	Name   string
	Record Record
}

// Subscribe registers an observer invoked synchronously after every store
// mutation. Observers must not mutate the store from the callback.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// notify delivers events to observers. Callers must not hold s.mu.
func (s *Store) notify(events ...Event) {
	s.mu.Lock()
	subs := make([]func(Event), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}
