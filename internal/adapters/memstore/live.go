package memstore

import "sync"

// listener is one live query. Deliveries carry the store sequence number they
// were computed at and are dropped unless newer than the last one delivered.
type listener[T any] struct {
	mu        sync.Mutex
	closed    bool
	delivered bool
	last      uint64
	query     func() T
	fn        func(T, error)
}

func (l *listener[T]) deliver(seq uint64, value T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || (l.delivered && seq <= l.last) {
		return
	}
	l.delivered = true
	l.last = seq
	l.fn(value, nil)
}

func (l *listener[T]) close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

type pending[T any] struct {
	l     *listener[T]
	seq   uint64
	value T
}

func flush[T any](batch []pending[T]) {
	for _, p := range batch {
		p.l.deliver(p.seq, p.value)
	}
}

// feed tracks the listeners of one store. All methods run under the store lock.
type feed[T any] struct {
	seq       uint64
	nextID    uint64
	listeners map[uint64]*listener[T]
}

func (f *feed[T]) add(query func() T, fn func(T, error)) (uint64, pending[T]) {
	if f.listeners == nil {
		f.listeners = make(map[uint64]*listener[T])
	}
	f.nextID++
	l := &listener[T]{query: query, fn: fn}
	f.listeners[f.nextID] = l
	return f.nextID, pending[T]{l: l, seq: f.seq, value: query()}
}

func (f *feed[T]) remove(id uint64) *listener[T] {
	l := f.listeners[id]
	delete(f.listeners, id)
	return l
}

// changed bumps the sequence and evaluates every query against the new data.
func (f *feed[T]) changed() []pending[T] {
	f.seq++
	batch := make([]pending[T], 0, len(f.listeners))
	for _, l := range f.listeners {
		batch = append(batch, pending[T]{l: l, seq: f.seq, value: l.query()})
	}
	return batch
}
