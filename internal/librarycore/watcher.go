package librarycore

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hmans/shelf/internal/library"
)

const debounceDelay = 100 * time.Millisecond

// Watch starts watching the seed file at path. Whenever the file is written
// or replaced, the store is reloaded from it (after debouncing) and onReload
// is invoked. Any data added through mutations since the last load is
// discarded by a reload. A seed file that fails to parse is logged and
// ignored; the current contents stay in place.
func (c *Core) Watch(path string, onReload func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.watching {
		c.mu.Unlock()
		return nil // Already watching
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.mu.Unlock()
		return err
	}

	// Watch the directory rather than the file: editors often save by
	// writing a new file and renaming it over the old one.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		c.mu.Unlock()
		return err
	}

	c.seedPath = absPath
	c.watching = true
	c.done = make(chan struct{})
	c.onReload = onReload
	done := c.done
	c.mu.Unlock()

	go c.watchLoop(watcher, absPath, done)

	return nil
}

// Unwatch stops watching the seed file.
func (c *Core) Unwatch() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.watching {
		return nil
	}

	close(c.done)
	c.watching = false
	c.onReload = nil

	return nil
}

// watchLoop processes filesystem events with debouncing.
func (c *Core) watchLoop(watcher *fsnotify.Watcher, path string, done <-chan struct{}) {
	defer watcher.Close()

	var debounceTimer *time.Timer
	var timerMu sync.Mutex

	for {
		select {
		case <-done:
			timerMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			timerMu.Unlock()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != path {
				continue
			}

			relevant := event.Op&fsnotify.Create != 0 ||
				event.Op&fsnotify.Write != 0 ||
				event.Op&fsnotify.Rename != 0
			if !relevant {
				continue
			}

			timerMu.Lock()
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, c.reloadSeed)
			timerMu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.mu.RLock()
			logger := c.logger
			c.mu.RUnlock()
			logger.Error(err, "watching seed file", "path", path)
		}
	}
}

// reloadSeed re-reads the watched seed file and replaces the store contents.
func (c *Core) reloadSeed() {
	c.mu.RLock()
	path := c.seedPath
	logger := c.logger
	c.mu.RUnlock()

	seed, err := library.LoadSeedFile(path)
	if err != nil {
		logger.Error(err, "reloading seed file", "path", path)
		return
	}

	c.mu.Lock()
	if !c.watching {
		c.mu.Unlock()
		return
	}
	c.replace(seed)
	callback := c.onReload
	c.mu.Unlock()

	logger.Info("reloaded seed file", "path", path, "authors", len(seed.Authors), "books", len(seed.Books))

	if callback != nil {
		callback()
	}
}
