package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "rb:"
	redisEventsChan  = "rb:events"
	redisPingPeriod  = 5 * time.Second
	redisCallTimeout = 5 * time.Second
)

// Redis is the production Store backend. Orders live in a hash keyed by
// store-assigned id, daily statistics in a hash of dotted fields (which
// is what makes HINCRBY-based atomic increments possible), and scalar
// paths in plain keys. Every write publishes the written path on a
// pub/sub channel; watchers re-read and receive a full-value snapshot.
type Redis struct {
	client *redis.Client

	mu       sync.Mutex
	watchers map[int]*memWatcher
	nextID   int

	connected atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewRedis connects to the store backend and starts the snapshot
// dispatcher and the connectivity ping loop.
func NewRedis(redisURL string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.MaxRetries = 3

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	runCtx, stop := context.WithCancel(context.Background())
	s := &Redis{
		client:   client,
		watchers: map[int]*memWatcher{},
		cancel:   stop,
		done:     make(chan struct{}, 2),
	}
	s.connected.Store(true)

	go s.dispatchLoop(runCtx)
	go s.pingLoop(runCtx)

	log.Println("store: connected to Redis backend")
	return s, nil
}

func (s *Redis) Get(ctx context.Context, path string) ([]byte, error) {
	if path == PathConnected {
		return json.Marshal(s.Connected())
	}
	switch kind(path) {
	case kindCollection:
		fields, err := s.client.HGetAll(ctx, redisKeyPrefix+path).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			return nil, ErrNotFound
		}
		obj := make(map[string]json.RawMessage, len(fields))
		for id, raw := range fields {
			obj[id] = json.RawMessage(raw)
		}
		return json.Marshal(obj)
	case kindChild:
		parent, id := splitChild(path)
		raw, err := s.client.HGet(ctx, redisKeyPrefix+parent, id).Result()
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return []byte(raw), nil
	case kindFlatDoc:
		fields, err := s.client.HGetAll(ctx, redisKeyPrefix+path).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			return nil, ErrNotFound
		}
		return json.Marshal(unflatten(fields))
	default:
		raw, err := s.client.Get(ctx, redisKeyPrefix+path).Result()
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return []byte(raw), nil
	}
}

func (s *Redis) Set(ctx context.Context, path string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}
	switch kind(path) {
	case kindChild:
		parent, id := splitChild(path)
		err = s.client.HSet(ctx, redisKeyPrefix+parent, id, string(b)).Err()
	case kindFlatDoc:
		fields, ferr := flattenJSON(b)
		if ferr != nil {
			return ferr
		}
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, redisKeyPrefix+path)
		pipe.HSet(ctx, redisKeyPrefix+path, fields)
		_, err = pipe.Exec(ctx)
	default:
		err = s.client.Set(ctx, redisKeyPrefix+path, string(b), 0).Err()
	}
	if err != nil {
		return err
	}
	return s.announce(ctx, path)
}

func (s *Redis) Update(ctx context.Context, path string, fields map[string]any) error {
	switch kind(path) {
	case kindChild:
		parent, id := splitChild(path)
		key := redisKeyPrefix + parent
		raw, err := s.client.HGet(ctx, key, id).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		// Update creates the document when the path is absent, same as
		// the in-process backend.
		doc := map[string]any{}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
		}
		for k, v := range fields {
			doc[k] = v
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		if err := s.client.HSet(ctx, key, id, string(b)).Err(); err != nil {
			return err
		}
	case kindFlatDoc:
		flat := make(map[string]string, len(fields))
		for k, v := range fields {
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			flat[k] = string(b)
		}
		if err := s.client.HSet(ctx, redisKeyPrefix+path, flat).Err(); err != nil {
			return err
		}
	default:
		raw, err := s.Get(ctx, path)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		doc := map[string]any{}
		if raw != nil {
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
		}
		for k, v := range fields {
			doc[k] = v
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		if err := s.client.Set(ctx, redisKeyPrefix+path, string(b), 0).Err(); err != nil {
			return err
		}
	}
	return s.announce(ctx, path)
}

func (s *Redis) Push(ctx context.Context, path string, value any) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	id := uuid.New().String()
	if err := s.client.HSet(ctx, redisKeyPrefix+path, id, string(b)).Err(); err != nil {
		return "", err
	}
	if err := s.announce(ctx, path+"/"+id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Redis) IncrBy(ctx context.Context, path, field string, delta int64) (int64, error) {
	n, err := s.client.HIncrBy(ctx, redisKeyPrefix+path, field, delta).Result()
	if err != nil {
		return 0, err
	}
	return n, s.announce(ctx, path)
}

func (s *Redis) NextSequence(ctx context.Context, name string) (int64, error) {
	return s.client.Incr(ctx, redisKeyPrefix+"counters/"+name).Result()
}

func (s *Redis) Watch(path string, fn func(Snapshot)) (Subscription, error) {
	w := &memWatcher{path: path, fn: fn}
	// Holding the watcher's delivery lock across registration keeps any
	// concurrent fanout from overtaking the initial snapshot.
	w.mu.Lock()
	defer w.mu.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = w
	s.mu.Unlock()

	fn(s.snapshot(path))
	return &redisSubscription{store: s, id: id}, nil
}

func (s *Redis) Connected() bool { return s.connected.Load() }

func (s *Redis) Close() error {
	s.cancel()
	<-s.done
	<-s.done
	return s.client.Close()
}

type redisSubscription struct {
	store *Redis
	id    int
	once  sync.Once
}

func (r *redisSubscription) Unsubscribe() {
	r.once.Do(func() {
		r.store.mu.Lock()
		delete(r.store.watchers, r.id)
		r.store.mu.Unlock()
	})
}

// announce publishes the written path so every client's watchers
// (including our own) re-read and deliver fresh snapshots.
func (s *Redis) announce(ctx context.Context, path string) error {
	return s.client.Publish(ctx, redisEventsChan, path).Err()
}

func (s *Redis) dispatchLoop(ctx context.Context) {
	defer func() { s.done <- struct{}{} }()

	sub := s.client.Subscribe(ctx, redisEventsChan)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.fanout(msg.Payload)
		}
	}
}

// fanout delivers snapshots to every watcher related to the written path.
// The snapshot is read under the watcher's delivery lock, so once the
// initial snapshot has gone out every later delivery carries a value at
// least as fresh.
func (s *Redis) fanout(written string) {
	s.mu.Lock()
	var targets []*memWatcher
	for _, w := range s.watchers {
		if related(w.path, written) {
			targets = append(targets, w)
		}
	}
	s.mu.Unlock()

	for _, w := range targets {
		w.mu.Lock()
		w.fn(s.snapshot(w.path))
		w.mu.Unlock()
	}
}

func (s *Redis) snapshot(path string) Snapshot {
	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()
	data, err := s.Get(ctx, path)
	if err != nil {
		return Snapshot{Path: path}
	}
	return Snapshot{Path: path, Data: data, Exists: true}
}

// pingLoop maintains the connectivity sentinel. A transition in either
// direction is delivered to PathConnected watchers.
func (s *Redis) pingLoop(ctx context.Context) {
	defer func() { s.done <- struct{}{} }()

	ticker := time.NewTicker(redisPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, redisCallTimeout)
			err := s.client.Ping(pingCtx).Err()
			cancel()

			up := err == nil
			if s.connected.Swap(up) != up {
				if up {
					log.Println("store: connection restored")
				} else {
					log.Printf("store: connection lost: %v", err)
				}
				s.fanout(PathConnected)
			}
		}
	}
}

type pathKind int

const (
	kindScalar pathKind = iota
	kindCollection
	kindChild
	kindFlatDoc
)

// kind classifies a path against the key layout: the order collection is
// a hash of JSON documents, daily statistics are hashes of dotted fields,
// everything else is a plain key.
func kind(path string) pathKind {
	switch {
	case path == PathOrders:
		return kindCollection
	case strings.HasPrefix(path, PathOrders+"/"):
		return kindChild
	case strings.HasPrefix(path, "statistics/daily/"):
		return kindFlatDoc
	default:
		return kindScalar
	}
}

func splitChild(path string) (parent, id string) {
	i := strings.LastIndex(path, "/")
	return path[:i], path[i+1:]
}

// flattenJSON turns a JSON object into dotted hash fields:
// {"by_menu":{"x":{"count":1}}} → {"by_menu.x.count": "1"}.
func flattenJSON(b []byte) (map[string]string, error) {
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("flatten: value is not an object: %w", err)
	}
	out := map[string]string{}
	flattenInto(out, "", doc)
	return out, nil
}

func flattenInto(out map[string]string, prefix string, doc map[string]any) {
	for k, v := range doc {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(out, key, nested)
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out[key] = string(b)
	}
}

// unflatten rebuilds the nested document from dotted hash fields. Field
// values written by HINCRBY are bare integers, which parse as JSON
// numbers like everything else.
func unflatten(fields map[string]string) map[string]any {
	doc := map[string]any{}
	for key, raw := range fields {
		parts := strings.Split(key, ".")
		obj := doc
		for _, p := range parts[:len(parts)-1] {
			next, ok := obj[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				obj[p] = next
			}
			obj = next
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		obj[parts[len(parts)-1]] = v
	}
	return doc
}
