package pathfinder

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Overrides are command line values taking precedence over the config file.
type Overrides struct {
	Threads *int
	Order   *int
	Out     string
}

func (o Overrides) apply(cfg *Config) {
	if o.Threads != nil {
		cfg.Settings.ThreadCount = *o.Threads
	}
	if o.Order != nil {
		cfg.Settings.ReflectionOrder = *o.Order
	}
	if o.Out != "" {
		cfg.Output.Path = o.Out
	}
}

// Run loads a configuration, computes every path and writes them out.
func Run(ctx context.Context, cfgPath string, ov Overrides, reg prometheus.Registerer) (StatsSnapshot, error) {
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return StatsSnapshot{}, err
	}
	ov.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return StatsSnapshot{}, err
	}

	start := time.Now()
	scene, err := cfg.BuildScene()
	if err != nil {
		return StatsSnapshot{}, err
	}
	DebugLog("Scene built in %s", time.Since(start))

	var (
		sink    PathSink
		flush   func() error
		counted sync.WaitGroup
		emitErr error
	)
	if cfg.Output.Path != "" {
		policy, _ := ParseOverflowPolicy(cfg.Output.Overflow)
		queue := NewChannelSink(cfg.Output.Queue, policy, cfg.Output.MaxPaths)
		geo := NewGeoJSONSink(nil)
		counted.Add(1)
		go func() {
			defer counted.Done()
			emitErr = drain(ctx, queue.C, geo)
		}()
		sink = queue
		flush = func() error {
			queue.Close()
			counted.Wait()
			if emitErr != nil {
				return emitErr
			}
			f, err := os.Create(cfg.Output.Path)
			if err != nil {
				return fmt.Errorf("create %s: %w", cfg.Output.Path, err)
			}
			geo.w = f
			if err := geo.Flush(); err != nil {
				_ = f.Close()
				return err
			}
			DebugLog("Saved %d paths to %s", geo.Len(), cfg.Output.Path)
			return f.Close()
		}
	} else {
		sink = FuncSink(func(context.Context, PairResult) error { return nil })
		flush = func() error { return nil }
	}

	start = time.Now()
	stats, runErr := ComputePathsInto(ctx, scene, cfg.SourceList(), cfg.ReceiverList(), cfg.Settings, sink, NewStats(reg))
	if err := flush(); err != nil && runErr == nil {
		runErr = err
	}
	snap := stats.Snapshot()
	logger().Info("paths computed",
		"took", time.Since(start),
		"pairs", snap.PairsProcessed,
		"failed", snap.PairsFailed,
		"dropped", snap.PairsDropped,
		"receivers", snap.ReceiversProcessed,
		"paths", snap.Paths,
	)
	if Debug {
		pathLogStats()
	}
	return snap, runErr
}
