package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Albertoimpl/animal-rescue/internal/config"
	"github.com/Albertoimpl/animal-rescue/internal/logger"
	"github.com/Albertoimpl/animal-rescue/internal/storage"
	"github.com/Albertoimpl/animal-rescue/internal/watch"
	"github.com/Albertoimpl/animal-rescue/pkg/publishers"
	"github.com/Albertoimpl/animal-rescue/pkg/shelters"
)

// Watcher is the shelter watcher runtime. It owns the poll loop and the
// resources the watch service needs: shelter clients, publishers and storage.
type Watcher struct {
	cfg          *config.Config
	shelterReg   *shelters.Registry
	fanout       *publishers.Fanout
	watchService *watch.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	shelterReg, err := shelters.LoadRegistry(cfg.SheltersFile)
	if err != nil {
		return nil, fmt.Errorf("load shelters registry: %w", err)
	}
	enabledShelters := shelterReg.Enabled()
	shelterIDs := make([]string, 0, len(enabledShelters))
	for _, s := range enabledShelters {
		shelterIDs = append(shelterIDs, s.ID)
	}
	log.InfoObj("shelters registry loaded", "shelters_meta", map[string]any{
		"declared": len(shelterReg.All()),
		"enabled":  shelterIDs,
	})

	catalog, err := publishers.Load(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	enabledPublishers := catalog.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		EventTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"event_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	fanout, err := publishers.BuildFanout(ctx, publishers.DefaultBuilders(), enabledPublishers, log)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":     pubCfg.ID,
			"type":   pubCfg.Type,
			"events": strings.Join(pubCfg.Events, ","),
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	svc := watch.NewService(newShelterSources(cfg, store), fanout, log, store)

	return &Watcher{
		cfg:          cfg,
		shelterReg:   shelterReg,
		fanout:       fanout,
		watchService: svc,
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run polls every shelter until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.watchService == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	list := w.shelterReg.Enabled()
	if len(list) == 0 {
		w.log.WarnObj("no shelters configured; watcher idle", "shelters_file", w.cfg.SheltersFile)
		<-ctx.Done()
		return nil
	}

	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"shelters_count":   len(list),
		"publishers_count": w.fanout.Size(),
		"poll_interval":    w.pollInterval.String(),
	})

	if err := w.runOnce(ctx, list); err != nil {
		w.log.ErrorObj("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx, list); err != nil {
				w.log.ErrorObj("scheduled poll failed", "error", err)
			}
		}
	}
}

// PollOnce runs a single pass over every shelter and releases the watcher.
func (w *Watcher) PollOnce(ctx context.Context) error {
	if w == nil || w.watchService == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	list := w.shelterReg.Enabled()
	if len(list) == 0 {
		return fmt.Errorf("no shelters configured in %s", w.cfg.SheltersFile)
	}
	return w.runOnce(ctx, list)
}

func (w *Watcher) runOnce(ctx context.Context, list []shelters.Shelter) error {
	start := time.Now()
	w.log.InfoObj("poll started", "poll_meta", map[string]any{
		"shelters_count": len(list),
		"started_at":     start.UTC(),
	})
	if err := w.watchService.Run(ctx, list); err != nil {
		return err
	}
	w.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"shelters_count": len(list),
		"elapsed_ms":     time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases publishers and storage, logging failures.
func (w *Watcher) close() {
	if w.fanout != nil {
		if err := w.fanout.Close(); err != nil {
			w.log.ErrorObj("publishers close failed", "error", err)
		}
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err)
		}
	}
}
