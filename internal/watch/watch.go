// Package watch scans captures as they are dropped into a folder.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ironsheep/relic-scan/internal/imaging"
)

// Debounce is how long a file must go without writes before it is handled.
// Screenshot tools often create the file first and fill it in afterwards.
const Debounce = 300 * time.Millisecond

const tick = 100 * time.Millisecond

// Handler is called once per settled capture. Errors are logged and do not
// stop the watcher.
type Handler func(ctx context.Context, path string) error

// Run watches dir for new or rewritten captures with a supported image
// extension and calls handle for each one on the calling goroutine. It
// returns nil when ctx is cancelled.
func Run(ctx context.Context, dir string, log zerolog.Logger, handle Handler) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Info().Str("dir", dir).Msg("watching for captures")

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	// last write seen per path
	pending := map[string]time.Time{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !imaging.IsSupported(ev.Name) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = time.Now()

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < Debounce {
					continue
				}
				delete(pending, path)

				log.Debug().Str("path", path).Msg("capture settled")
				if err := handle(ctx, path); err != nil {
					log.Error().Err(err).Str("path", path).Msg("capture failed")
				}
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}
