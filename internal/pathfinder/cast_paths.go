package pathfinder

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

// Orientation of a directional source in degrees: yaw around the vertical
// axis, then pitch and roll. The zero value points along +X.
type Orientation struct {
	Yaw, Pitch, Roll Real
}

func (o Orientation) finite() bool { return isFinite(o.Yaw) && isFinite(o.Pitch) && isFinite(o.Roll) }

// Source is a point emitter.
type Source struct {
	ID          int64
	Pos         Point3
	Orientation Orientation
}

// Receiver is a point listener.
type Receiver struct {
	ID  int64
	Pos Point3
}

// ComputePaths runs every receiver against the sources within MaxSrcDist on
// a pool of settings.ThreadCount workers and hands each pair to sink. A
// failing pair is reported in its PairResult and counted, the batch goes on.
// Cancelling ctx stops the batch between pairs; results already emitted
// stay valid.
func ComputePaths(ctx context.Context, scene *Scene, sources []Source, receivers []Receiver, settings Settings, sink PathSink) (*Stats, error) {
	return ComputePathsInto(ctx, scene, sources, receivers, settings, sink, nil)
}

// ComputePathsInto is ComputePaths counting into stats (nil creates
// unregistered counters).
func ComputePathsInto(ctx context.Context, scene *Scene, sources []Source, receivers []Receiver, settings Settings, sink PathSink, stats *Stats) (*Stats, error) {
	if err := settings.Validate(); err != nil {
		return stats, err
	}
	if stats == nil {
		stats = NewStats(nil)
	}
	asm := NewPathAssembler(scene, settings)
	sources = resolveSources(scene, sources, settings.SourceRelativeZ)
	receivers = resolveReceivers(scene, receivers, settings.ReceiverRelativeZ)
	if len(sources) == 0 || len(receivers) == 0 {
		return stats, nil
	}
	srcIndex := newIndex(len(sources), func(i int) orb.Bound {
		p := sources[i].Pos.XY()
		return orb.Bound{Min: p, Max: p}
	})

	workers := workerCount(settings.ThreadCount)
	total := int64(len(receivers))
	nextPrint := int64(1)
	if total >= ProgressSteps {
		nextPrint = total / ProgressSteps // ~1%
	}
	DebugLog("Computing paths: %d sources, %d receivers, %d workers", len(sources), len(receivers), workers)

	arenas := sync.Pool{New: func() any { return new(MirrorArena) }}
	var done int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for ri := range receivers {
		if gctx.Err() != nil {
			break
		}
		rcv := receivers[ri]
		g.Go(func() error {
			arena := arenas.Get().(*MirrorArena)
			defer arenas.Put(arena)
			err := processReceiver(gctx, asm, rcv, sources, srcIndex, arena, sink, stats)
			fired := atomic.AddInt64(&done, 1)
			if Progress && fired%nextPrint == 0 {
				fmt.Printf("[PROGRESS] %.2f%%\n", Real(fired)*100/Real(total))
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, ctx.Err()
}

func processReceiver(ctx context.Context, asm *PathAssembler, rcv Receiver, sources []Source, srcIndex *rtreego.Rtree, arena *MirrorArena, sink PathSink, stats *Stats) error {
	start := time.Now()
	maxDist := asm.settings.MaxSrcDist
	p := rcv.Pos.XY()
	var near []int
	for _, si := range searchIndex(srcIndex, orb.Bound{Min: p, Max: p}.Pad(maxDist)) {
		if sources[si].Pos.Dist2D(rcv.Pos) <= maxDist {
			near = append(near, si)
		}
	}
	if len(near) == 0 {
		stats.receiverDone(0, time.Since(start))
		return nil
	}

	var mirrors *MirrorIndex
	if asm.settings.ReflectionOrder > 0 {
		m, err := asm.MirrorIndex(ctx, rcv.Pos, arena)
		if err != nil {
			return err
		}
		mirrors = m
		defer mirrors.Release()
	}

	for _, si := range near {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := sources[si]
		res := computePairSafe(ctx, asm, src, rcv, mirrors)
		if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			return res.Err
		}
		if res.Err != nil {
			logPath("pair_failed", PairFailure, src.ID, rcv.ID, -1, src.Pos.XY())
		}
		// each pair lands in a single outcome counter
		switch err := sink.Emit(ctx, res); {
		case err == nil && res.Err != nil:
			stats.pairFailed()
		case err == nil:
			stats.pairDone(res.Paths)
		case errors.Is(err, ErrSinkFull):
			stats.pairDropped()
		default:
			return fmt.Errorf("emit pair %d/%d: %w", src.ID, rcv.ID, err)
		}
	}
	images := 0
	if mirrors != nil {
		images = mirrors.Len()
	}
	stats.receiverDone(images, time.Since(start))
	return nil
}

// computePairSafe turns errors and panics of one pair into a failed result.
func computePairSafe(ctx context.Context, asm *PathAssembler, src Source, rcv Receiver, mirrors *MirrorIndex) (res PairResult) {
	res = PairResult{SourceID: src.ID, ReceiverID: rcv.ID}
	defer func() {
		if r := recover(); r != nil {
			DebugLog("pair %d/%d panicked: %v\n%s", src.ID, rcv.ID, r, debug.Stack())
			res.Paths = nil
			res.Err = NewPairError(src.ID, rcv.ID, fmt.Errorf("panic: %v", r))
		}
	}()
	paths, err := asm.ComputePair(ctx, src, rcv, mirrors)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			res.Err = err
			return res
		}
		res.Err = NewPairError(src.ID, rcv.ID, err)
		return res
	}
	res.Paths = paths
	return res
}

// resolveSources makes heights absolute when they are relative to the terrain.
func resolveSources(scene *Scene, in []Source, relative bool) []Source {
	out := make([]Source, len(in))
	copy(out, in)
	if relative {
		for i := range out {
			out[i].Pos.Z += scene.GroundElevationAt(out[i].Pos.X, out[i].Pos.Y)
		}
	}
	return out
}

// resolveReceivers also drops repeated ids, the first one wins.
func resolveReceivers(scene *Scene, in []Receiver, relative bool) []Receiver {
	seen := make(map[int64]struct{}, len(in))
	out := make([]Receiver, 0, len(in))
	for _, r := range in {
		if _, dup := seen[r.ID]; dup {
			DebugLog("Skipping duplicate receiver %d", r.ID)
			continue
		}
		seen[r.ID] = struct{}{}
		if relative {
			r.Pos.Z += scene.GroundElevationAt(r.Pos.X, r.Pos.Y)
		}
		out = append(out, r)
	}
	return out
}
