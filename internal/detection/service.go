package detection

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/cache"
	"github.com/zuoliangyu/stm32-configurator-by-zuolan-sub000/internal/toolchain"
)

// DefaultCacheValidity is how long detection results are served from cache.
const DefaultCacheValidity = 5 * time.Minute

// Options controls a single DetectToolchains call.
type Options struct {
	// ForceRedetection bypasses the cache.
	ForceRedetection bool
	// SpecificTools restricts detection to the named tools.
	SpecificTools []toolchain.Tool
	// CacheValidity overrides DefaultCacheValidity.
	CacheValidity time.Duration
}

var defaultOptions = Options{CacheValidity: DefaultCacheValidity}

// Service runs detectors and maintains the result cache.
type Service struct {
	cache     *cache.Manager
	detectors map[toolchain.Tool]toolchain.Detector
	group     singleflight.Group
	now       func() time.Time
	logger    *zap.Logger

	mu       sync.Mutex
	inflight map[toolchain.Tool]time.Time // probe start per running tool
}

// NewService creates a detection service. Each tool may have at most one
// detector; a later detector for the same tool replaces an earlier one.
func NewService(c *cache.Manager, detectors []toolchain.Detector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = cache.NewManager()
	}
	byTool := make(map[toolchain.Tool]toolchain.Detector, len(detectors))
	for _, d := range detectors {
		byTool[d.Tool()] = d
	}
	return &Service{
		cache:     c,
		detectors: byTool,
		now:       time.Now,
		logger:    logger,
		inflight:  make(map[toolchain.Tool]time.Time),
	}
}

// Cache returns the underlying cache manager.
func (s *Service) Cache() *cache.Manager {
	return s.cache
}

// Snapshot returns the cached results with every tool whose probe is still
// running marked as detecting. It never starts detection.
func (s *Service) Snapshot() toolchain.Results {
	results, ok := s.cache.Get()
	if !ok {
		results = toolchain.EmptyResults()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for tool, started := range s.inflight {
		_ = results.Set(tool, toolchain.Detecting(tool, started))
	}
	return results
}

// DetectToolchains returns detection results for the requested tools, from
// cache when fresh and by running detectors otherwise. It fails for an
// unknown tool identifier, or with ctx's error when ctx is done first.
//
// Detectors run detached from ctx and are bounded by the runner's own
// timeout, so an abandoned pass still completes and refreshes the cache and
// callers sharing the pass are unaffected by one caller giving up.
func (s *Service) DetectToolchains(ctx context.Context, opts Options) (toolchain.Results, error) {
	if err := ctx.Err(); err != nil {
		return toolchain.Results{}, err
	}
	if err := mergo.Merge(&opts, defaultOptions); err != nil {
		return toolchain.Results{}, fmt.Errorf("failed to apply detection defaults: %w", err)
	}

	tools, err := normalizeTools(opts.SpecificTools)
	if err != nil {
		return toolchain.Results{}, err
	}

	if len(tools) > 0 {
		return s.detectSpecific(ctx, tools, opts)
	}

	if !opts.ForceRedetection && s.cache.IsValid(opts.CacheValidity) {
		if cached, ok := s.cache.Get(); ok {
			s.logger.Debug("serving detection results from cache")
			return cached.WithFromCache(), nil
		}
	}

	key := flightKey(toolchain.AllTools)
	if opts.ForceRedetection {
		key = "force:" + key
	}
	flightCtx := context.WithoutCancel(ctx)
	return s.await(ctx, key, func() (toolchain.Results, error) {
		// A flight that finished just before this one started may have
		// refreshed the cache
		if !opts.ForceRedetection && s.cache.IsValid(opts.CacheValidity) {
			if cached, ok := s.cache.Get(); ok {
				return cached.WithFromCache(), nil
			}
		}
		results := s.run(flightCtx, toolchain.AllTools)
		s.cache.Set(results)
		return results, nil
	})
}

// detectSpecific serves a partial request.
func (s *Service) detectSpecific(ctx context.Context, tools []toolchain.Tool, opts Options) (toolchain.Results, error) {
	if !opts.ForceRedetection && s.cache.IsValid(opts.CacheValidity) && s.cache.HasEntries(tools) {
		cached, err := s.cache.GetSpecific(tools)
		if err != nil {
			return toolchain.Results{}, err
		}
		s.logger.Debug("serving partial detection results from cache",
			zap.String("tools", flightKey(tools)),
		)
		return cached.WithFromCache(), nil
	}

	key := "partial:" + flightKey(tools)
	if opts.ForceRedetection {
		key = "force:" + key
	}
	flightCtx := context.WithoutCancel(ctx)
	return s.await(ctx, key, func() (toolchain.Results, error) {
		results := s.run(flightCtx, tools)
		if err := s.cache.UpdateSpecific(results, tools); err != nil {
			return toolchain.Results{}, err
		}
		return results, nil
	})
}

// await joins or starts the flight for key and waits for it or for ctx.
func (s *Service) await(ctx context.Context, key string, fn func() (toolchain.Results, error)) (toolchain.Results, error) {
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return fn()
	})
	select {
	case <-ctx.Done():
		s.logger.Debug("detection abandoned by caller",
			zap.String("flight", key),
			zap.Error(ctx.Err()),
		)
		return toolchain.Results{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return toolchain.Results{}, r.Err
		}
		if r.Shared {
			s.logger.Debug("joined in-flight detection", zap.String("flight", key))
		}
		return r.Val.(toolchain.Results).Clone(), nil
	}
}

// run executes the detectors for tools concurrently and assembles a fresh
// aggregate. Tools without a detector are reported as failed.
func (s *Service) run(ctx context.Context, tools []toolchain.Tool) toolchain.Results {
	start := s.now()
	found := make([]toolchain.DetectionResult, len(tools))

	g, gctx := errgroup.WithContext(ctx)
	for i, tool := range tools {
		i, tool := i, tool
		d, ok := s.detectors[tool]
		if !ok {
			found[i] = toolchain.Failed(tool, "no detector configured", start)
			continue
		}
		s.markInflight(tool, start)
		g.Go(func() error {
			defer s.clearInflight(tool)
			found[i] = d.Detect(gctx, start)
			return nil
		})
	}
	// Detectors never fail
	_ = g.Wait()

	results := toolchain.EmptyResults()
	for i, tool := range tools {
		_ = results.Set(tool, found[i])
		s.logger.Info("tool detection finished",
			zap.String("tool", string(tool)),
			zap.String("status", string(found[i].Status)),
			zap.String("path", found[i].Path),
			zap.String("source", found[i].Source),
		)
	}
	results.CompletedAt = s.now()

	s.logger.Debug("detection pass complete",
		zap.String("tools", flightKey(tools)),
		zap.Duration("elapsed", results.CompletedAt.Sub(start)),
	)
	return results
}

func (s *Service) markInflight(tool toolchain.Tool, at time.Time) {
	s.mu.Lock()
	s.inflight[tool] = at
	s.mu.Unlock()
}

func (s *Service) clearInflight(tool toolchain.Tool) {
	s.mu.Lock()
	delete(s.inflight, tool)
	s.mu.Unlock()
}

// normalizeTools validates and de-duplicates the requested tools.
func normalizeTools(tools []toolchain.Tool) ([]toolchain.Tool, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	seen := make(map[toolchain.Tool]bool, len(tools))
	out := make([]toolchain.Tool, 0, len(tools))
	for _, t := range tools {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %q", cache.ErrUnknownTool, t)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}

func flightKey(tools []toolchain.Tool) string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = string(t)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
