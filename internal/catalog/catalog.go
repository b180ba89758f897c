// Lodestar - Content Relevance and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodestar

package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/lodestar/internal/metrics"
	"github.com/tomtom215/lodestar/internal/recommend"
)

const storeLabel = "catalog"

// TagIDPrefix prefixes every tag id issued by the catalog.
const TagIDPrefix = "legacy:"

// Post statuses in the legacy file.
const (
	statusPublished = "published"
	statusDraft     = "draft"
	statusDeleted   = "deleted"
)

// legacyFile is the on-disk layout of the legacy catalog.
type legacyFile struct {
	Posts []legacyPost `yaml:"posts"`
}

// legacyPost is one flat legacy record.
type legacyPost struct {
	ID        string   `yaml:"id"`
	Title     string   `yaml:"title"`
	Category  string   `yaml:"category"`
	Tags      []string `yaml:"tags"`
	Date      string   `yaml:"date"`
	Views     int      `yaml:"views"`
	Likes     int      `yaml:"likes"`
	Bookmarks int      `yaml:"bookmarks"`
	Trust     *int     `yaml:"trust,omitempty"`
	Source    string   `yaml:"source,omitempty"`
	Status    string   `yaml:"status,omitempty"`
}

// Options controls how legacy posts are converted.
type Options struct {
	// DefaultTrustScore is assigned to posts without a trust value.
	DefaultTrustScore int

	// DefaultSourceType is assigned to posts without a source.
	DefaultSourceType recommend.SourceType
}

// DefaultOptions returns the conversion defaults.
func DefaultOptions() Options {
	return Options{
		DefaultTrustScore: 50,
		DefaultSourceType: recommend.SourceManual,
	}
}

// Catalog is an in-memory content store and tag registry.
type Catalog struct {
	mu     sync.RWMutex
	items  []recommend.ContentItem
	index  map[string]int
	logger zerolog.Logger
}

// New creates a catalog holding copies of items.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(items []recommend.ContentItem, logger zerolog.Logger) *Catalog {
	c := &Catalog{logger: logger.With().Str("component", "catalog").Logger()}
	c.replace(items)
	return c
}

// Load reads a legacy YAML catalog file.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Load(path string, opts Options, logger zerolog.Logger) (*Catalog, error) {
	items, err := readFile(path, opts)
	if err != nil {
		return nil, err
	}
	c := New(items, logger)
	c.logger.Info().Str("path", path).Int("posts", len(items)).Msg("Legacy catalog loaded")
	return c, nil
}

// Reload replaces the catalog contents from path. On error the current
// contents are kept.
func (c *Catalog) Reload(path string, opts Options) error {
	items, err := readFile(path, opts)
	if err != nil {
		return err
	}
	c.replace(items)
	c.logger.Info().Str("path", path).Int("posts", len(items)).Msg("Legacy catalog reloaded")
	return nil
}

// Len returns the number of posts.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Items returns copies of all posts in file order, including inactive ones.
func (c *Catalog) Items() []recommend.ContentItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]recommend.ContentItem, len(c.items))
	for i := range c.items {
		out[i] = c.items[i]
		out[i].Tags = append([]string{}, c.items[i].Tags...)
	}
	return out
}

func (c *Catalog) replace(items []recommend.ContentItem) {
	copied := make([]recommend.ContentItem, len(items))
	index := make(map[string]int, len(items))
	for i := range items {
		copied[i] = items[i]
		copied[i].Tags = append([]string{}, items[i].Tags...)
		index[items[i].ID] = i
	}

	c.mu.Lock()
	c.items = copied
	c.index = index
	c.mu.Unlock()
}

// readFile parses and converts a legacy catalog file.
func readFile(path string, opts Options) ([]recommend.ContentItem, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data, opts)
}

// Parse converts legacy YAML into content items. Posts with an empty id or
// category, an unparseable date, or a duplicate id are rejected.
func Parse(data []byte, opts Options) ([]recommend.ContentItem, error) {
	var file legacyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Posts))
	items := make([]recommend.ContentItem, 0, len(file.Posts))
	for i := range file.Posts {
		p := &file.Posts[i]
		if p.ID == "" || p.Category == "" {
			return nil, fmt.Errorf("post %d: id and category are required", i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("post %s: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}

		item, err := p.toItem(opts)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", p.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// toItem converts a legacy post into the canonical item shape.
func (p *legacyPost) toItem(opts Options) (recommend.ContentItem, error) {
	published, err := parseDate(p.Date)
	if err != nil {
		return recommend.ContentItem{}, err
	}

	trust := opts.DefaultTrustScore
	if p.Trust != nil {
		trust = *p.Trust
	}
	if trust < 0 || trust > 100 {
		return recommend.ContentItem{}, fmt.Errorf("trust %d out of range", trust)
	}

	source := opts.DefaultSourceType
	if p.Source != "" {
		source = recommend.SourceType(strings.ToLower(p.Source))
		if !source.Valid() {
			return recommend.ContentItem{}, fmt.Errorf("unknown source %q", p.Source)
		}
	}

	status := strings.ToLower(p.Status)
	switch status {
	case "", statusPublished, statusDraft, statusDeleted:
	default:
		return recommend.ContentItem{}, fmt.Errorf("unknown status %q", p.Status)
	}

	tags := make([]string, 0, len(p.Tags))
	seen := make(map[string]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}

	return recommend.ContentItem{
		ID:            p.ID,
		Title:         p.Title,
		Category:      p.Category,
		Tags:          tags,
		TrustScore:    trust,
		SourceType:    source,
		PublishedAt:   published,
		ViewCount:     p.Views,
		LikeCount:     p.Likes,
		BookmarkCount: p.Bookmarks,
		IsActive:      status != statusDeleted,
		IsDraft:       status == statusDraft,
	}, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// Query implements recommend.ContentStore.
//
//nolint:gocritic // hugeParam: Query is passed by value to match the interface
func (c *Catalog) Query(ctx context.Context, q recommend.Query) ([]recommend.ContentItem, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		metrics.RecordStoreQuery(storeLabel, "query", time.Since(start), err)
		return nil, err
	}

	c.mu.RLock()
	out := recommend.ApplyQuery(c.items, q)
	c.mu.RUnlock()

	for i := range out {
		out[i].Tags = append([]string{}, out[i].Tags...)
	}

	metrics.RecordStoreQuery(storeLabel, "query", time.Since(start), nil)
	return out, nil
}

// GetByID implements recommend.ContentStore.
func (c *Catalog) GetByID(ctx context.Context, id string) (*recommend.ContentItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, recommend.ErrNotFound)
	}
	item := c.items[i]
	item.Tags = append([]string{}, item.Tags...)
	return &item, nil
}

// IncrementCounter implements recommend.ContentStore. Counters never go below zero.
func (c *Catalog) IncrementCounter(ctx context.Context, id string, field recommend.CounterField, delta int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return fmt.Errorf("item %s: %w", id, recommend.ErrNotFound)
	}

	item := &c.items[i]
	var counter *int
	switch field {
	case recommend.CounterViews:
		counter = &item.ViewCount
	case recommend.CounterLikes:
		counter = &item.LikeCount
	case recommend.CounterBookmarks:
		counter = &item.BookmarkCount
	default:
		return fmt.Errorf("unknown counter field %q", field)
	}

	*counter += delta
	if *counter < 0 {
		*counter = 0
	}
	return nil
}

// Resolve implements recommend.TagRegistry. Post counts include every post
// carrying the tag, visible or not.
func (c *Catalog) Resolve(ctx context.Context, names []string) ([]recommend.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted := make(map[string]int, len(names))
	for _, n := range names {
		wanted[n] = 0
	}

	c.mu.RLock()
	for i := range c.items {
		for _, t := range c.items[i].Tags {
			if _, ok := wanted[t]; ok {
				wanted[t]++
			}
		}
	}
	c.mu.RUnlock()

	tags := make([]recommend.Tag, 0, len(wanted))
	for name, count := range wanted {
		if count == 0 {
			continue
		}
		tags = append(tags, recommend.Tag{ID: TagIDPrefix + name, Name: name, GlobalPostCount: count})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

// ItemsForTags implements recommend.TagRegistry.
func (c *Catalog) ItemsForTags(ctx context.Context, tagIDs []string) ([]recommend.TagItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(tagIDs))
	for _, id := range tagIDs {
		if name, ok := strings.CutPrefix(id, TagIDPrefix); ok {
			byName[name] = id
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	rows := make([]recommend.TagItem, 0)
	for i := range c.items {
		for _, t := range c.items[i].Tags {
			if id, ok := byName[t]; ok {
				rows = append(rows, recommend.TagItem{ItemID: c.items[i].ID, TagID: id})
			}
		}
	}
	return rows, nil
}

var (
	_ recommend.ContentStore = (*Catalog)(nil)
	_ recommend.TagRegistry  = (*Catalog)(nil)
)
