// Package cards maintains the card cost index used for average-elixir
// calculations. The index is populated from the game API card catalog and
// can be overridden by a local catalog file.
package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/royale-meta/internal/cache"
	"github.com/ramonehamilton/royale-meta/internal/royale"
)

// DefaultCost is returned for cards missing from the catalog. An unknown
// card is a data-quality gap, not a failure.
const DefaultCost = 4

// DefaultRefreshTTL is how long a fetched catalog is considered fresh.
const DefaultRefreshTTL = 24 * time.Hour

// FetchFunc retrieves the card catalog, normally royale.Client.GetCards.
type FetchFunc func(ctx context.Context) ([]royale.CatalogCard, error)

// Index resolves card names to elixir costs. It is safe for concurrent use.
// Construct it explicitly and inject it; there is no package-level instance.
type Index struct {
	mu          sync.RWMutex
	costs       map[string]int
	overrides   map[string]int
	lastRefresh time.Time

	fetch      FetchFunc
	ttl        time.Duration
	clock      cache.Clock
	logger     *slog.Logger
	refreshing sync.Mutex

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Options configures an Index.
type Options struct {
	Fetch FetchFunc

	// RefreshTTL is how long before a fetched catalog goes stale.
	// Defaults to DefaultRefreshTTL.
	RefreshTTL time.Duration

	// Clock defaults to the system clock.
	Clock cache.Clock

	Logger *slog.Logger
}

// NewIndex creates an empty index. Call Refresh (or let Cost trigger one)
// to populate it.
func NewIndex(opts Options) *Index {
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = DefaultRefreshTTL
	}
	if opts.Clock == nil {
		opts.Clock = cache.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Index{
		costs:     make(map[string]int),
		overrides: make(map[string]int),
		fetch:     opts.Fetch,
		ttl:       opts.RefreshTTL,
		clock:     opts.Clock,
		logger:    opts.Logger,
		done:      make(chan struct{}),
	}
}

// Cost returns the elixir cost for a card, falling back to DefaultCost when
// unknown. A stale catalog triggers a background refresh; the current value
// is always served immediately, so a refresh failure degrades to stale data
// rather than an error.
func (idx *Index) Cost(cardName string) int {
	name := strings.ToLower(strings.TrimSpace(cardName))

	idx.mu.RLock()
	cost, ok := idx.overrides[name]
	if !ok {
		cost, ok = idx.costs[name]
	}
	stale := idx.clock.Now().Sub(idx.lastRefresh) > idx.ttl
	idx.mu.RUnlock()

	if stale && idx.fetch != nil {
		go idx.refreshIfStale()
	}

	if !ok {
		return DefaultCost
	}
	return cost
}

// Refresh fetches the catalog and replaces the cost table.
func (idx *Index) Refresh(ctx context.Context) error {
	if idx.fetch == nil {
		return fmt.Errorf("no catalog fetcher configured")
	}

	catalog, err := idx.fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch card catalog: %w", err)
	}

	costs := make(map[string]int, len(catalog))
	for _, card := range catalog {
		if card.Name == "" || card.Elixir <= 0 {
			continue
		}
		costs[strings.ToLower(card.Name)] = card.Elixir
	}

	idx.mu.Lock()
	idx.costs = costs
	idx.lastRefresh = idx.clock.Now()
	idx.mu.Unlock()

	idx.logger.Info("card catalog refreshed", "cards", len(costs))
	return nil
}

// refreshIfStale performs a single-flight background refresh.
func (idx *Index) refreshIfStale() {
	if !idx.refreshing.TryLock() {
		return
	}
	defer idx.refreshing.Unlock()

	idx.mu.RLock()
	stale := idx.clock.Now().Sub(idx.lastRefresh) > idx.ttl
	idx.mu.RUnlock()
	if !stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := idx.Refresh(ctx); err != nil {
		idx.logger.Warn("card catalog refresh failed, serving stale costs", "error", err)
	}
}

// LoadOverrideFile loads a JSON file mapping card names to costs. Entries
// take precedence over the fetched catalog.
func (idx *Index) LoadOverrideFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog override: %w", err)
	}

	var overrides map[string]int
	if err := json.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse catalog override: %w", err)
	}

	normalized := make(map[string]int, len(overrides))
	for name, cost := range overrides {
		if cost <= 0 {
			continue
		}
		normalized[strings.ToLower(strings.TrimSpace(name))] = cost
	}

	idx.mu.Lock()
	idx.overrides = normalized
	idx.mu.Unlock()

	idx.logger.Info("card catalog override loaded", "path", path, "cards", len(normalized))
	return nil
}

// WatchOverrideFile loads the override file and reloads it whenever it
// changes on disk. Call Close to stop watching.
func (idx *Index) WatchOverrideFile(path string) error {
	if err := idx.LoadOverrideFile(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}
	idx.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					if err := idx.LoadOverrideFile(path); err != nil {
						idx.logger.Warn("catalog override reload failed", "error", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				idx.logger.Warn("catalog watcher error", "error", err)
			case <-idx.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the override file watcher if one is running.
func (idx *Index) Close() error {
	close(idx.done)
	if idx.watcher != nil {
		return idx.watcher.Close()
	}
	return nil
}
