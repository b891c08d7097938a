package ontoshop

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/underlay/ontoshop/graph"
)

// Backend loads and saves the whole shop graph. Load never fails: a graph
// that cannot be read is replaced by an empty one.
type Backend interface {
	Load() *graph.Graph
	Save(g *graph.Graph) error
}

var (
	_ Backend = (*FileBackend)(nil)
	_ Backend = (*CachedBackend)(nil)
)

// FileBackend reads the RDF/XML file on every Load and replaces it
// atomically on every Save
type FileBackend struct {
	Path    string
	logger  *zap.Logger
	metrics *Metrics
}

// NewFileBackend returns a backend for the RDF/XML file at path
func NewFileBackend(path string, logger *zap.Logger, metrics *Metrics) *FileBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &FileBackend{Path: path, logger: logger, metrics: metrics}
}

// Load parses the file. A missing or unparsable file yields an empty graph.
func (b *FileBackend) Load() *graph.Graph {
	file, err := os.Open(b.Path)
	if errors.Is(err, os.ErrNotExist) {
		b.logger.Info("Ontology file missing, starting from an empty graph", zap.String("path", b.Path))
		b.metrics.LoadFailures.WithLabelValues("missing").Inc()
		return graph.New()
	} else if err != nil {
		b.logger.Warn("Failed to open ontology file", zap.String("path", b.Path), zap.Error(err))
		b.metrics.LoadFailures.WithLabelValues("unreadable").Inc()
		return graph.New()
	}
	defer file.Close()

	g, err := graph.Decode(bufio.NewReader(file))
	if err != nil {
		b.logger.Warn("Failed to parse ontology file", zap.String("path", b.Path), zap.Error(err))
		b.metrics.LoadFailures.WithLabelValues("parse").Inc()
		return graph.New()
	}
	return g
}

// Save serializes g to a temporary file next to the target, then renames it
// over the target. Failures are returned as a *PersistError.
func (b *FileBackend) Save(g *graph.Graph) error {
	if err := b.write(g); err != nil {
		b.logger.Error("Failed to persist ontology file", zap.String("path", b.Path), zap.Error(err))
		b.metrics.PersistFailures.Inc()
		return &PersistError{Path: b.Path, Err: err}
	}
	b.metrics.Persisted.Inc()
	return nil
}

func (b *FileBackend) write(g *graph.Graph) (err error) {
	dir, base := filepath.Dir(b.Path), filepath.Base(b.Path)
	if err = os.MkdirAll(dir, 0755); err != nil {
		return
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return
	}
	name := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(name)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = graph.Encode(w, g); err == nil {
		if err = w.Flush(); err == nil {
			err = tmp.Sync()
		}
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return
	}

	if err = os.Chmod(name, 0644); err != nil {
		return
	}
	return os.Rename(name, b.Path)
}

// CachedBackend keeps the last graph read from a FileBackend and drops it
// whenever the backing file changes on disk
type CachedBackend struct {
	file    *FileBackend
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mu     sync.Mutex
	cached *graph.Graph

	done chan struct{}
}

// NewCachedBackend watches the directory of file.Path for changes
func NewCachedBackend(file *FileBackend) (*CachedBackend, error) {
	dir := filepath.Dir(file.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	c := &CachedBackend{
		file:    file,
		watcher: watcher,
		logger:  file.logger.Named("cache"),
		done:    make(chan struct{}),
	}
	go c.watch(filepath.Base(file.Path))
	return c, nil
}

func (c *CachedBackend) watch(base string) {
	defer close(c.done)
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base || event.Op == fsnotify.Chmod {
				continue
			}
			c.logger.Debug("Ontology file changed", zap.String("op", event.Op.String()))
			c.Invalidate()
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("Watcher error", zap.Error(err))
			c.Invalidate()
		}
	}
}

// Load returns a copy of the cached graph, reading the file if the cache is empty
func (c *CachedBackend) Load() *graph.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached == nil {
		c.cached = c.file.Load()
	}
	return c.cached.Clone()
}

// Save writes g through to the file and caches it
func (c *CachedBackend) Save(g *graph.Graph) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.file.Save(g); err != nil {
		c.cached = nil
		return err
	}
	c.cached = g.Clone()
	return nil
}

// Invalidate drops the cached graph so the next Load reads the file
func (c *CachedBackend) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

// Close stops the watcher
func (c *CachedBackend) Close() error {
	err := c.watcher.Close()
	<-c.done
	return err
}
