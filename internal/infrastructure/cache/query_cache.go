package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
	"github.com/johnquangdev/meeting-portal/internal/api"
	"github.com/johnquangdev/meeting-portal/internal/infrastructure/transport"
	"github.com/johnquangdev/meeting-portal/pkg/logger"
)

// DefaultKeepUnusedFor is how long an entry without subscribers is retained
const DefaultKeepUnusedFor = 60 * time.Second

// Executor performs the network exchange for a descriptor
type Executor interface {
	Execute(ctx context.Context, d api.Descriptor, req api.Request) (*transport.Response, error)
}

// Result is the last resolution of a read
type Result struct {
	Data      any
	Err       error
	FetchedAt time.Time
}

// EntryInfo describes one cache entry for diagnostics
type EntryInfo struct {
	Key         string
	Tags        []string
	Subscribers int
	Stale       bool
	HasData     bool
	Generation  uint64
}

type entry struct {
	key  string
	seq  uint64
	desc api.Descriptor
	req  api.Request

	// gen is bumped on every invalidation so results of fetches that started
	// before a write never overwrite the entry.
	gen    uint64
	stale  bool
	result *Result
	tags   []api.Tag
	subs   map[*Subscription]struct{}
}

func (e *entry) fresh() bool {
	return e.result != nil && e.result.Err == nil && !e.stale
}

// QueryCache deduplicates reads, serves cached results and refreshes tagged
// entries after successful writes. Writes are pessimistic: nothing changes
// until the server confirms.
type QueryCache struct {
	mu         sync.Mutex
	registry   *api.Registry
	exec       Executor
	entries    *gocache.Cache
	tagIndex   map[api.Tag]map[string]struct{}
	loading    map[string]struct{}
	seq        uint64
	flight     singleflight.Group
	keepUnused time.Duration
	logger     *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates a query cache. keepUnused <= 0 selects DefaultKeepUnusedFor.
func New(registry *api.Registry, exec Executor, keepUnused time.Duration, log *zap.Logger) *QueryCache {
	if keepUnused <= 0 {
		keepUnused = DefaultKeepUnusedFor
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &QueryCache{
		registry:   registry,
		exec:       exec,
		entries:    gocache.New(keepUnused, 0),
		tagIndex:   make(map[api.Tag]map[string]struct{}),
		loading:    make(map[string]struct{}),
		keepUnused: keepUnused,
		logger:     logger.OrNop(log),
		baseCtx:    ctx,
		cancel:     cancel,
	}
	// Evictions only happen under c.mu: dropLocked and the janitor.
	c.entries.OnEvicted(func(key string, _ interface{}) {
		c.untagKeyLocked(key)
		delete(c.loading, key)
	})
	go c.janitor(keepUnused)
	return c
}

// Close cancels background refetches and stops the eviction janitor
func (c *QueryCache) Close() {
	c.cancel()
}

func (c *QueryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.entries.DeleteExpired()
			c.mu.Unlock()
		case <-c.baseCtx.Done():
			return
		}
	}
}

// Read returns the cached result for (name, req) when it is fresh, otherwise
// joins or starts the single in-flight fetch for that key. Cancelling ctx stops
// waiting but never cancels the shared fetch.
func (c *QueryCache) Read(ctx context.Context, name string, req api.Request) (any, error) {
	d, err := c.descriptor(name, api.KindQuery)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	e := c.entryLocked(d, req, false)
	if e.fresh() {
		data := e.result.Data
		c.mu.Unlock()
		return data, nil
	}
	ch := c.fetchLocked(e)
	c.mu.Unlock()

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Subscribe starts observing (name, req). The subscription receives the
// current result when one is fresh and every later resolution, including
// refetches triggered by invalidation.
func (c *QueryCache) Subscribe(name string, req api.Request) (*Subscription, error) {
	d, err := c.descriptor(name, api.KindQuery)
	if err != nil {
		return nil, err
	}

	sub := newSubscription(c)

	c.mu.Lock()
	e := c.entryLocked(d, req, true)
	sub.key = e.key
	e.subs[sub] = struct{}{}
	c.entries.Set(e.key, e, gocache.NoExpiration)
	if e.fresh() {
		sub.deliver(*e.result)
	} else {
		c.fetchLocked(e)
	}
	c.mu.Unlock()
	return sub, nil
}

// Write always performs the call. On success every entry tagged with one of
// the descriptor's invalidation tags is marked stale: subscribed entries are
// refetched, unsubscribed ones are dropped. A failed write leaves the cache
// untouched. If ctx ends first the write still completes and still
// invalidates.
func (c *QueryCache) Write(ctx context.Context, name string, req api.Request) (any, error) {
	d, err := c.descriptor(name, api.KindMutation)
	if err != nil {
		return nil, err
	}

	type outcome struct {
		data any
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		resp, err := c.exec.Execute(context.WithoutCancel(ctx), d, req)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		data, err := d.DecodeBody(resp.Body)
		if err != nil {
			done <- outcome{err: apperrors.ErrInternal(fmt.Errorf("failed to decode %s response: %w", d.Name, err))}
			return
		}
		c.Invalidate(d.Invalidated(data, req)...)
		done <- outcome{data: data}
	}()

	select {
	case out := <-done:
		return out.data, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate marks every entry carrying one of tags stale
func (c *QueryCache) Invalidate(tags ...api.Tag) {
	if len(tags) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make(map[string]struct{})
	for _, tag := range tags {
		for key := range c.tagIndex[tag] {
			keys[key] = struct{}{}
		}
	}
	// A fetch still running may have read the server before the write.
	for key := range c.loading {
		keys[key] = struct{}{}
	}

	for key := range keys {
		e, ok := c.lookupLocked(key)
		if !ok {
			c.untagKeyLocked(key)
			delete(c.loading, key)
			continue
		}
		e.gen++
		e.stale = true
		if len(e.subs) == 0 {
			c.dropLocked(e)
			continue
		}
		c.fetchLocked(e)
	}

	c.logger.Debug("cache tags invalidated",
		zap.Stringers("tags", tags),
		zap.Int("entries", len(keys)),
	)
}

// Entries reports the live entries, sorted by key
func (c *QueryCache) Entries() []EntryInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := c.entries.Items()
	infos := make([]EntryInfo, 0, len(items))
	for _, item := range items {
		e := item.Object.(*entry)
		tags := make([]string, 0, len(e.tags))
		for _, t := range e.tags {
			tags = append(tags, t.String())
		}
		sort.Strings(tags)
		infos = append(infos, EntryInfo{
			Key:         e.key,
			Tags:        tags,
			Subscribers: len(e.subs),
			Stale:       e.stale,
			HasData:     e.result != nil && e.result.Err == nil,
			Generation:  e.gen,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

func (c *QueryCache) descriptor(name string, kind api.Kind) (api.Descriptor, error) {
	d, ok := c.registry.Lookup(name)
	if !ok {
		return api.Descriptor{}, apperrors.ErrNotFound(fmt.Sprintf("endpoint %q", name))
	}
	if d.Kind != kind {
		return api.Descriptor{}, apperrors.ErrInternal(fmt.Errorf("endpoint %q is a %s, not a %s", name, d.Kind, kind))
	}
	return d, nil
}

func (c *QueryCache) lookupLocked(key string) (*entry, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

func (c *QueryCache) entryLocked(d api.Descriptor, req api.Request, subscribing bool) *entry {
	key := d.CacheKey(req)
	if e, ok := c.lookupLocked(key); ok {
		return e
	}
	// An expired entry may have left its key behind in the tag index.
	c.untagKeyLocked(key)
	c.seq++
	e := &entry{
		key:  key,
		seq:  c.seq,
		desc: d,
		req:  req,
		subs: make(map[*Subscription]struct{}),
	}
	c.retagLocked(e, d.Provided(nil, req))
	if subscribing {
		c.entries.Set(key, e, gocache.NoExpiration)
	} else {
		c.entries.Set(key, e, c.keepUnused)
	}
	return e
}

// fetchLocked joins or starts the fetch for the entry's current generation.
// Flight keys carry the entry sequence so a recreated entry never joins a
// fetch started for the one it replaced.
func (c *QueryCache) fetchLocked(e *entry) <-chan singleflight.Result {
	gen := e.gen
	c.loading[e.key] = struct{}{}
	flightKey := fmt.Sprintf("%s@%d#%d", e.key, e.seq, gen)
	return c.flight.DoChan(flightKey, func() (interface{}, error) {
		return c.load(e, gen)
	})
}

func (c *QueryCache) load(e *entry, gen uint64) (any, error) {
	var res Result
	resp, err := c.exec.Execute(c.baseCtx, e.desc, e.req)
	if err == nil {
		res.Data, err = e.desc.DecodeBody(resp.Body)
		if err != nil {
			err = apperrors.ErrInternal(fmt.Errorf("failed to decode %s response: %w", e.desc.Name, err))
		}
	}
	res.Err = err
	res.FetchedAt = time.Now()

	c.mu.Lock()
	current, ok := c.lookupLocked(e.key)
	if !ok || current != e || e.gen != gen {
		c.mu.Unlock()
		return res.Data, res.Err
	}
	delete(c.loading, e.key)

	if res.Err != nil {
		// Errors are reported, never cached as data: the next read retries.
		e.result = &Result{Err: res.Err, FetchedAt: res.FetchedAt}
		c.retagLocked(e, e.desc.Provided(nil, e.req))
	} else {
		e.result = &res
		e.stale = false
		c.retagLocked(e, e.desc.Provided(res.Data, e.req))
	}
	subs := make([]*Subscription, 0, len(e.subs))
	for s := range e.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	if res.Err != nil {
		c.logger.Warn("cache read failed", zap.String("key", e.key), zap.Error(res.Err))
	}
	for _, s := range subs {
		s.deliver(res)
	}
	return res.Data, res.Err
}

func (c *QueryCache) retagLocked(e *entry, tags []api.Tag) {
	for _, t := range e.tags {
		if keys := c.tagIndex[t]; keys != nil {
			delete(keys, e.key)
			if len(keys) == 0 {
				delete(c.tagIndex, t)
			}
		}
	}
	e.tags = tags
	for _, t := range tags {
		keys := c.tagIndex[t]
		if keys == nil {
			keys = make(map[string]struct{})
			c.tagIndex[t] = keys
		}
		keys[e.key] = struct{}{}
	}
}

func (c *QueryCache) untagKeyLocked(key string) {
	for t, keys := range c.tagIndex {
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.tagIndex, t)
		}
	}
}

func (c *QueryCache) dropLocked(e *entry) {
	c.retagLocked(e, nil)
	delete(c.loading, e.key)
	c.entries.Delete(e.key)
}

func (c *QueryCache) unsubscribe(s *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lookupLocked(s.key)
	if !ok {
		return
	}
	delete(e.subs, s)
	if len(e.subs) > 0 {
		return
	}
	if e.stale {
		c.dropLocked(e)
		return
	}
	c.entries.Set(e.key, e, c.keepUnused)
}
