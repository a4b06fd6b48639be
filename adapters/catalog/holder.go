package catalog

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/artpar/apiref/domain/collection"
)

// Holder provides thread-safe access to a catalog with hot reload
// support. It implements ports.CatalogSource by delegating to the
// current snapshot, so the registry sees reloads on its next lazy
// registration.
type Holder struct {
	mu       sync.RWMutex
	catalog  *Catalog
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*Catalog)
	stopCh   chan struct{}
}

// NewHolder creates a catalog holder and loads the initial catalog.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	cat, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &Holder{
		catalog: cat,
		path:    absPath,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Get returns the current catalog snapshot (thread-safe).
func (h *Holder) Get() *Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalog
}

// Reload reloads the catalog from disk.
// Returns error if loading fails (keeps old catalog).
func (h *Holder) Reload() error {
	h.logger.Info().Str("path", h.path).Msg("reloading catalog")

	newCat, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Msg("catalog reload failed, keeping old catalog")
		return fmt.Errorf("reload catalog: %w", err)
	}

	h.mu.Lock()
	oldCat := h.catalog
	h.catalog = newCat
	h.mu.Unlock()

	h.logChanges(oldCat, newCat)

	for _, fn := range h.onChange {
		fn(newCat)
	}

	h.logger.Info().Msg("catalog reloaded successfully")
	return nil
}

// OnChange registers a callback to be called when the catalog changes.
func (h *Holder) OnChange(fn func(*Catalog)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// WatchFile starts watching the catalog file for changes.
// Changes trigger automatic reload.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	// Watch the directory (more reliable for editors that do atomic saves)
	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Msg("watching catalog file for changes")
	return nil
}

// WatchSignals starts listening for SIGHUP to trigger reload.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading catalog")
				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("SIGHUP reload failed")
				}
			case <-h.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()
}

// Stop stops watching for file changes and signals.
func (h *Holder) Stop() {
	close(h.stopCh)
	if h.watcher != nil {
		h.watcher.Close()
	}
}

func (h *Holder) watchLoop() {
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}

			// Only react to our catalog file
			if filepath.Base(event.Name) != filename {
				continue
			}

			// React to write or create (atomic save = create)
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				h.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("catalog file changed")

				if err := h.Reload(); err != nil {
					h.logger.Error().Err(err).Msg("file watch reload failed")
				}
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

func (h *Holder) logChanges(old, new *Catalog) {
	oldAPIs, newAPIs := old.APIs(), new.APIs()
	if len(oldAPIs) != len(newAPIs) {
		h.logger.Info().
			Int("old", len(oldAPIs)).
			Int("new", len(newAPIs)).
			Msg("api count changed")
	}
	for _, api := range newAPIs {
		oldV, err := old.DefaultVersion(api)
		if err != nil {
			h.logger.Info().Str("api", api).Msg("api added")
			continue
		}
		newV, _ := new.DefaultVersion(api)
		if oldV != newV {
			h.logger.Info().
				Str("api", api).
				Str("old", oldV).
				Str("new", newV).
				Msg("default version changed")
		}
	}
}

// APIs implements ports.CatalogSource against the current snapshot.
func (h *Holder) APIs() []string {
	return h.Get().APIs()
}

// DefaultVersion implements ports.CatalogSource against the current
// snapshot.
func (h *Holder) DefaultVersion(api string) (string, error) {
	return h.Get().DefaultVersion(api)
}

// Collections implements ports.CatalogSource against the current
// snapshot.
func (h *Holder) Collections(api, version string) ([]collection.Schema, error) {
	return h.Get().Collections(api, version)
}
