// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package recommend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var errStoreDown = errors.New("store down")

// testNow is the fixed clock used by engine tests.
var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func daysAgo(n float64) time.Time {
	return testNow.Add(-time.Duration(n * float64(Day)))
}

// mockContentStore implements ContentStore over an in-memory item list.
type mockContentStore struct {
	mu         sync.Mutex
	items      []ContentItem
	queryErrs  []error // consumed in order, one per Query call
	queryErr   error   // returned by every Query call once queryErrs is drained
	getErrs    map[string]error
	counterErr error
	counters   map[string]int // "id/field" -> accumulated delta
	queries    []Query
}

func newMockContentStore(items ...ContentItem) *mockContentStore {
	return &mockContentStore{
		items:    items,
		getErrs:  make(map[string]error),
		counters: make(map[string]int),
	}
}

func (m *mockContentStore) Query(ctx context.Context, q Query) ([]ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queries = append(m.queries, q)
	if len(m.queryErrs) > 0 {
		err := m.queryErrs[0]
		m.queryErrs = m.queryErrs[1:]
		if err != nil {
			return nil, err
		}
	} else if m.queryErr != nil {
		return nil, m.queryErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ApplyQuery(m.items, q), nil
}

func (m *mockContentStore) GetByID(ctx context.Context, id string) (*ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.getErrs[id]; err != nil {
		return nil, err
	}
	for i := range m.items {
		if m.items[i].ID == id {
			item := m.items[i]
			return &item, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockContentStore) IncrementCounter(ctx context.Context, id string, field CounterField, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.counterErr != nil {
		return m.counterErr
	}
	m.counters[id+"/"+string(field)] += delta
	return nil
}

func (m *mockContentStore) counter(id string, field CounterField) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[id+"/"+string(field)]
}

func (m *mockContentStore) setQueryErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErr = err
}

func (m *mockContentStore) setGetErr(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.getErrs, id)
		return
	}
	m.getErrs[id] = err
}

func (m *mockContentStore) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}

// mockProfileStore implements ProfileStore over a map.
type mockProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*UserProfile
	getErrs  map[string]error
	listErr  error
	saveErr  error
	saves    int
}

func newMockProfileStore(profiles ...*UserProfile) *mockProfileStore {
	m := &mockProfileStore{
		profiles: make(map[string]*UserProfile),
		getErrs:  make(map[string]error),
	}
	for _, p := range profiles {
		m.profiles[p.UserID] = p
	}
	return m
}

func (m *mockProfileStore) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.getErrs[userID]; err != nil {
		return nil, err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return NewProfile(userID), nil
	}
	return p.Clone(), nil
}

func (m *mockProfileStore) setGetErr(userID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.getErrs, userID)
		return
	}
	m.getErrs[userID] = err
}

func (m *mockProfileStore) SaveProfile(ctx context.Context, profile *UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.profiles[profile.UserID] = profile.Clone()
	return nil
}

func (m *mockProfileStore) ListUserIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockProfileStore) stored(userID string) *UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[userID]; ok {
		return p.Clone()
	}
	return nil
}

// mockTagRegistry derives tag identities and memberships from a content store.
type mockTagRegistry struct {
	content    *mockContentStore
	globals    map[string]int // overrides the derived global post count
	resolveErr error
	itemsErr   error
}

func newMockTagRegistry(content *mockContentStore) *mockTagRegistry {
	return &mockTagRegistry{content: content, globals: make(map[string]int)}
}

func (m *mockTagRegistry) Resolve(ctx context.Context, names []string) ([]Tag, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}

	counts := make(map[string]int)
	m.content.mu.Lock()
	for _, item := range m.content.items {
		for _, t := range item.Tags {
			counts[strings.ToLower(t)]++
		}
	}
	m.content.mu.Unlock()

	var out []Tag
	for _, n := range names {
		n = strings.ToLower(n)
		c, ok := counts[n]
		if !ok {
			continue
		}
		if g, set := m.globals[n]; set {
			c = g
		}
		out = append(out, Tag{ID: "tag-" + n, Name: n, GlobalPostCount: c})
	}
	return out, nil
}

func (m *mockTagRegistry) ItemsForTags(ctx context.Context, tagIDs []string) ([]TagItem, error) {
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}

	m.content.mu.Lock()
	defer m.content.mu.Unlock()

	var rows []TagItem
	for _, item := range m.content.items {
		for _, t := range item.Tags {
			id := "tag-" + strings.ToLower(t)
			for _, want := range tagIDs {
				if id == want {
					rows = append(rows, TagItem{ItemID: item.ID, TagID: id})
				}
			}
		}
	}
	return rows, nil
}

// mockCache implements ListingCache without expiry.
type mockCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	clears  int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]interface{})}
}

func (c *mockCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *mockCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *mockCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]interface{})
	c.clears++
}

func (c *mockCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// testEngine wires an engine to fresh mocks with a fixed clock.
type testEngine struct {
	*Engine
	content  *mockContentStore
	profiles *mockProfileStore
	tags     *mockTagRegistry
	cache    *mockCache
}

func newTestEngine(items []ContentItem, profiles ...*UserProfile) *testEngine {
	engine, err := NewEngine(nil, testLogger())
	if err != nil {
		panic("failed to create engine: " + err.Error())
	}
	engine.SetClock(func() time.Time { return testNow })

	content := newMockContentStore(items...)
	ps := newMockProfileStore(profiles...)
	tags := newMockTagRegistry(content)
	cache := newMockCache()
	engine.SetStores(content, ps, tags)
	engine.SetCache(cache)

	return &testEngine{Engine: engine, content: content, profiles: ps, tags: tags, cache: cache}
}

// newItem builds a visible content item.
func newItem(id, category string, tags ...string) ContentItem {
	return ContentItem{
		ID:          id,
		Category:    category,
		Tags:        tags,
		TrustScore:  50,
		SourceType:  SourceNews,
		PublishedAt: daysAgo(400),
		IsActive:    true,
	}
}

func itemIDs[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func rankedIDs(items []RankedItem) []string {
	return itemIDs(items, func(r RankedItem) string { return r.Item.ID })
}

func candidateIDs(items []Candidate) []string {
	return itemIDs(items, func(c Candidate) string { return c.Item.ID })
}

func contentIDs(items []ContentItem) []string {
	return itemIDs(items, func(c ContentItem) string { return c.ID })
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
