package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk format of the static price catalog.
type catalogFile struct {
	Currency string             `yaml:"currency"`
	SKUs     map[string]float64 `yaml:"skus"`
}

// CatalogResolver resolves prices from a static YAML catalog on disk.
// Prices change out of band, so the catalog can be watched and reloaded.
type CatalogResolver struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	currency string
	skus     map[string]float64
}

// NewCatalogResolver loads the catalog at path. The file must exist and
// parse; an empty SKU map is allowed (every lookup then falls through the
// chain).
func NewCatalogResolver(path string, logger *slog.Logger) (*CatalogResolver, error) {
	if logger == nil {
		logger = slog.Default().With("component", "pricing.catalog")
	}

	r := &CatalogResolver{path: path, logger: logger}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Resolve returns the catalog price for the item's SKU. Tier is ignored:
// the static catalog carries flat per-unit prices.
func (r *CatalogResolver) Resolve(_ context.Context, item Item) (Price, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unitPrice, ok := r.skus[item.SKU]
	if !ok {
		return Price{}, fmt.Errorf("%w: sku %q not in catalog %s", ErrPriceUnavailable, item.SKU, r.path)
	}
	return Price{UnitPrice: unitPrice, Currency: r.currency, Source: "catalog"}, nil
}

// reload re-reads the catalog file and swaps the SKU map atomically.
func (r *CatalogResolver) reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("failed to read price catalog %q: %w", r.path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse price catalog %q: %w", r.path, err)
	}
	if file.Currency == "" {
		file.Currency = "USD"
	}

	r.mu.Lock()
	r.currency = file.Currency
	r.skus = file.SKUs
	r.mu.Unlock()

	r.logger.Info("price catalog loaded", "path", r.path, "skus", len(file.SKUs))
	return nil
}

// Watch reloads the catalog whenever the file changes on disk. It blocks
// until the context is cancelled. A reload failure keeps the previous
// catalog in place.
//
// The parent directory is watched rather than the file itself so that
// editors and config-map style atomic replaces (write temp, rename over)
// keep triggering events.
func (r *CatalogResolver) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create catalog watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch catalog directory %q: %w", dir, err)
	}

	r.logger.Info("price catalog watcher started", "path", r.path)

	target := filepath.Clean(r.path)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("price catalog watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("catalog watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := r.reload(); err != nil {
				r.logger.Error("price catalog reload failed, keeping previous prices",
					"path", r.path,
					"error", err,
				)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("catalog watcher errors channel closed")
			}
			r.logger.Error("price catalog watcher error", "error", err)
		}
	}
}
