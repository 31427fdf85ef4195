package processing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/promptgate/promptgate/config"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ResourceLoader reads the static prompt resources from the data directory.
// Every read or parse failure degrades silently to an empty value; failures
// are logged but never surfaced to callers.
//
// By default both files are re-read on every request. Concurrent duplicate
// reads are collapsed with singleflight so a burst of requests causes one
// filesystem read, with every request still observing fresh data. When the
// cache is enabled, values are held in memory and invalidated by an
// fsnotify watcher on the data directory.
type ResourceLoader struct {
	dir    string
	logger *zap.Logger
	sf     singleflight.Group

	cacheEnabled bool
	watcher      *fsnotify.Watcher

	mu             sync.RWMutex
	contextCache   []ContextEntry
	contextValid   bool
	guardrailCache string
	guardrailValid bool
}

// NewResourceLoader creates a loader for the configured data directory.
// If the cache is requested but the watcher cannot be established, the
// loader falls back to per-request reads rather than serving stale data.
func NewResourceLoader(cfg config.ResourceConfig, logger *zap.Logger) *ResourceLoader {
	l := &ResourceLoader{
		dir:    cfg.Dir,
		logger: logger,
	}

	if cfg.CacheEnabled {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			logger.Warn("resource cache disabled: cannot create watcher", zap.Error(err))
			return l
		}
		if err := watcher.Add(cfg.Dir); err != nil {
			logger.Warn("resource cache disabled: cannot watch data directory",
				zap.String("dir", cfg.Dir),
				zap.Error(err),
			)
			watcher.Close()
			return l
		}
		l.cacheEnabled = true
		l.watcher = watcher
		go l.watch()
	}

	return l
}

// Close stops the cache watcher, if any.
func (l *ResourceLoader) Close() error {
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

// Context returns the current context entry sequence. Missing or
// unparsable files yield an empty sequence.
func (l *ResourceLoader) Context() []ContextEntry {
	if l.cacheEnabled {
		l.mu.RLock()
		if l.contextValid {
			entries := l.contextCache
			l.mu.RUnlock()
			return entries
		}
		l.mu.RUnlock()
	}

	v, _, _ := l.sf.Do(contextFile, func() (interface{}, error) {
		entries := l.readContext()
		if l.cacheEnabled {
			l.mu.Lock()
			l.contextCache = entries
			l.contextValid = true
			l.mu.Unlock()
		}
		return entries, nil
	})
	return v.([]ContextEntry)
}

// Guardrail returns the current guardrail directive. Missing or
// unparsable files yield the empty string.
func (l *ResourceLoader) Guardrail() string {
	if l.cacheEnabled {
		l.mu.RLock()
		if l.guardrailValid {
			directive := l.guardrailCache
			l.mu.RUnlock()
			return directive
		}
		l.mu.RUnlock()
	}

	v, _, _ := l.sf.Do(guardrailFile, func() (interface{}, error) {
		directive := l.readGuardrail()
		if l.cacheEnabled {
			l.mu.Lock()
			l.guardrailCache = directive
			l.guardrailValid = true
			l.mu.Unlock()
		}
		return directive, nil
	})
	return v.(string)
}

func (l *ResourceLoader) readContext() []ContextEntry {
	path := filepath.Join(l.dir, contextFile)
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("context resource unavailable, using empty context",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}

	var entries []ContextEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		l.logger.Warn("context resource unparsable, using empty context",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}
	return entries
}

func (l *ResourceLoader) readGuardrail() string {
	path := filepath.Join(l.dir, guardrailFile)
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("guardrail resource unavailable, using empty directive",
			zap.String("path", path),
			zap.Error(err),
		)
		return ""
	}

	var directive GuardrailDirective
	if err := json.Unmarshal(data, &directive); err != nil {
		l.logger.Warn("guardrail resource unparsable, using empty directive",
			zap.String("path", path),
			zap.Error(err),
		)
		return ""
	}
	return directive.Prompt
}

// watch invalidates the cached values whenever either resource file
// changes on disk.
func (l *ResourceLoader) watch() {
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			switch filepath.Base(event.Name) {
			case contextFile:
				l.mu.Lock()
				l.contextValid = false
				l.mu.Unlock()
				l.logger.Info("context resource changed, cache invalidated")
			case guardrailFile:
				l.mu.Lock()
				l.guardrailValid = false
				l.mu.Unlock()
				l.logger.Info("guardrail resource changed, cache invalidated")
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("resource watcher error", zap.Error(err))
		}
	}
}
