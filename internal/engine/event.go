package engine

// ListenerID identifies a listener so it can be removed later.
// Go funcs are not comparable, so removal goes through the ID.
type ListenerID uint64

type listener[T any] struct {
	id ListenerID
	fn func(T)
}

// EventWithArg is a multi-cast event with one argument.
type EventWithArg[T any] struct {
	listeners []listener[T]
	nextID    ListenerID
}

func (e *EventWithArg[T]) AddListener(callback func(T)) ListenerID {
	if callback == nil {
		return 0
	}
	e.nextID++
	e.listeners = append(e.listeners, listener[T]{id: e.nextID, fn: callback})
	return e.nextID
}

// RemoveListener removes the listener with the given ID. Reports whether it was found.
func (e *EventWithArg[T]) RemoveListener(id ListenerID) bool {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls every listener in subscription order.
func (e *EventWithArg[T]) Invoke(arg T) {
	for _, l := range e.listeners {
		l.fn(arg)
	}
}

func (e *EventWithArg[T]) GetListenerCount() int {
	return len(e.listeners)
}
