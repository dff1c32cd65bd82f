package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fischerjooo/c2puml-sub000/pkg/cache"
	"github.com/fischerjooo/c2puml-sub000/pkg/config"
	"github.com/fischerjooo/c2puml-sub000/pkg/model"
	"github.com/fischerjooo/c2puml-sub000/pkg/parser"
)

// Processor parses a set of source files concurrently and merges the results
// into one ProjectModel. Parse results are merged under a mutex; the cache,
// when present, lets unchanged files skip the parse entirely.
type Processor struct {
	cfg    *config.Config
	cache  *cache.Cache
	logger *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithCache attaches a parse cache. The processor does not own the cache;
// the caller closes it.
func WithCache(c *cache.Cache) Option {
	return func(p *Processor) { p.cache = c }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// NewProcessor creates a processor for the given configuration.
func NewProcessor(cfg *config.Config, opts ...Option) *Processor {
	p := &Processor{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run discovers the configured source files and parses them on a bounded
// worker pool. Unreadable files are logged and skipped; the run fails only
// on discovery errors or context cancellation.
func (p *Processor) Run(ctx context.Context) (*model.ProjectModel, error) {
	files, err := Discover(p.cfg)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, files)
}

// Process parses the given files into a ProjectModel.
func (p *Processor) Process(ctx context.Context, files []string) (*model.ProjectModel, error) {
	pm := model.NewProjectModel(p.cfg.Project.Name)

	workers := p.cfg.Parser.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	p.logger.Info("parsing project",
		"name", p.cfg.Project.Name,
		"files", len(files),
		"workers", workers,
		"cache", p.cache != nil)

	paths := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	var hits, misses int

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				// A fresh parser per file keeps resolver counters file-local,
				// so synthesized names depend only on the file's own content.
				ps := parser.NewWithResolver(p.newResolver())
				fm, fromCache := p.parseFile(ps, path)
				if fm == nil {
					continue
				}
				mu.Lock()
				pm.AddFile(fm)
				if fromCache {
					hits++
				} else {
					misses++
				}
				mu.Unlock()
			}
		}()
	}

	var cancelErr error
feed:
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break feed
		}
		select {
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break feed
		case paths <- path:
		}
	}
	close(paths)
	wg.Wait()

	if cancelErr != nil {
		return nil, fmt.Errorf("processing interrupted: %w", cancelErr)
	}

	p.logger.Info("parse complete",
		"files", len(pm.Files),
		"cache_hits", hits,
		"parsed", misses)
	return pm, nil
}

// parseFile loads one file through the cache. A nil result means the file
// could not be read; that is logged, not fatal.
func (p *Processor) parseFile(ps *parser.Parser, path string) (*model.FileModel, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("skipping unreadable file", "path", path, "error", err)
		return nil, false
	}

	if p.cache == nil {
		return ps.Parse(path, string(content)), false
	}

	hash := cache.HashContent(content)
	if fm, hit, err := p.cache.GetModel(path, hash); err == nil && hit {
		return fm, true
	} else if err != nil {
		p.logger.Warn("cache read failed", "path", path, "error", err)
	}

	fm := ps.Parse(path, string(content))
	if err := p.cache.PutModel(path, hash, fm); err != nil {
		p.logger.Warn("cache write failed", "path", path, "error", err)
	}
	return fm, false
}

func (p *Processor) newResolver() *parser.Resolver {
	r := parser.NewResolver()
	if p.cfg.Parser.MaxDepth > 0 {
		r.MaxDepth = p.cfg.Parser.MaxDepth
	}
	return r
}
