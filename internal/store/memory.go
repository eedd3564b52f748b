package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store used by tests and by dry runs of the
// robot bridge. It implements the same snapshot semantics as the hosted
// backend: watchers get the current value on subscribe and a full value
// on every write at or below the watched path. Deliveries happen under
// the store lock, which keeps them in write order; watcher callbacks
// must not call back into the store.
type Memory struct {
	mu       sync.Mutex
	root     map[string]any
	counters map[string]int64
	watchers map[int]*memWatcher
	nextID   int
}

type memWatcher struct {
	path string
	fn   func(Snapshot)

	// mu sequences deliveries to one watcher; used by the Redis backend,
	// whose fanout runs concurrently with registration.
	mu sync.Mutex
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		root:     map[string]any{},
		counters: map[string]int64{},
		watchers: map[int]*memWatcher{},
	}
}

func (m *Memory) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(path)
}

func (m *Memory) getLocked(path string) ([]byte, error) {
	node, ok := m.lookup(path)
	if !ok {
		return nil, ErrNotFound
	}
	return json.Marshal(node)
}

func (m *Memory) Set(_ context.Context, path string, value any) error {
	node, err := toTree(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.place(path, node)
	m.notifyLocked(path)
	return nil
}

func (m *Memory) Update(_ context.Context, path string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.document(path)
	for k, v := range fields {
		node, err := toTree(v)
		if err != nil {
			return err
		}
		// Field names are dotted paths into the document, same as IncrBy.
		obj, leaf := descend(doc, k)
		obj[leaf] = node
	}
	m.notifyLocked(path)
	return nil
}

func (m *Memory) Push(_ context.Context, path string, value any) (string, error) {
	node, err := toTree(value)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	child := path + "/" + id
	m.mu.Lock()
	defer m.mu.Unlock()
	m.place(child, node)
	m.notifyLocked(child)
	return id, nil
}

func (m *Memory) IncrBy(_ context.Context, path, field string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, leaf := descend(m.document(path), field)
	cur := asInt64(doc[leaf])
	cur += delta
	doc[leaf] = cur
	m.notifyLocked(path)
	return cur, nil
}

func (m *Memory) NextSequence(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
	return m.counters[name], nil
}

func (m *Memory) Watch(path string, fn func(Snapshot)) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.watchers[id] = &memWatcher{path: path, fn: fn}
	// Delivered before the lock is released, so no concurrent write can
	// fan out a newer snapshot ahead of this one.
	fn(m.snapshotLocked(path))
	return &memSubscription{store: m, id: id}, nil
}

// Connected is always true for the in-process store; sentinel watchers
// therefore see a single true snapshot.
func (m *Memory) Connected() bool { return true }

func (m *Memory) Close() error {
	m.mu.Lock()
	m.watchers = map[int]*memWatcher{}
	m.mu.Unlock()
	return nil
}

type memSubscription struct {
	store *Memory
	id    int
	once  sync.Once
}

func (s *memSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.store.mu.Lock()
		delete(s.store.watchers, s.id)
		s.store.mu.Unlock()
	})
}

// lookup walks the tree to the node at path.
func (m *Memory) lookup(path string) (any, bool) {
	if path == PathConnected {
		return true, true
	}
	var node any = m.root
	for _, seg := range strings.Split(path, "/") {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// document returns the mutable object at path, creating intermediate
// objects as needed.
func (m *Memory) document(path string) map[string]any {
	obj := m.root
	for _, seg := range strings.Split(path, "/") {
		next, ok := obj[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			obj[seg] = next
		}
		obj = next
	}
	return obj
}

// place overwrites the node at path with value.
func (m *Memory) place(path string, value any) {
	segs := strings.Split(path, "/")
	obj := m.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := obj[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			obj[seg] = next
		}
		obj = next
	}
	obj[segs[len(segs)-1]] = value
}

// notifyLocked delivers fresh snapshots for a write to path. A watcher
// fires when it watches the written path itself, an ancestor of it, or a
// descendant of it.
func (m *Memory) notifyLocked(path string) {
	for _, w := range m.watchers {
		if related(w.path, path) {
			w.fn(m.snapshotLocked(w.path))
		}
	}
}

func (m *Memory) snapshotLocked(path string) Snapshot {
	data, err := m.getLocked(path)
	if err != nil {
		return Snapshot{Path: path}
	}
	return Snapshot{Path: path, Data: data, Exists: true}
}

// descend walks a dotted field path to the object holding the leaf,
// creating intermediate objects as needed.
func descend(doc map[string]any, field string) (map[string]any, string) {
	parts := strings.Split(field, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := doc[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[p] = next
		}
		doc = next
	}
	return doc, parts[len(parts)-1]
}

func related(watched, written string) bool {
	return watched == written ||
		strings.HasPrefix(written, watched+"/") ||
		strings.HasPrefix(watched, written+"/")
}

func toTree(value any) (any, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var node any
	if err := json.Unmarshal(b, &node); err != nil {
		return nil, err
	}
	return node, nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	default:
		return 0
	}
}
