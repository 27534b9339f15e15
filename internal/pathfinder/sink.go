package pathfinder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/paulmach/orb/geojson"
)

// PairResult carries every path of one source/receiver pair. A pair is
// always emitted as a whole; Err is set when its computation failed.
type PairResult struct {
	SourceID   int64
	ReceiverID int64
	Paths      []Path
	Err        error
}

// PathSink receives pair results from concurrent workers.
// Returning ErrSinkFull drops the pair; any other error aborts the batch.
type PathSink interface {
	Emit(ctx context.Context, res PairResult) error
}

// MemorySink keeps every result in memory.
type MemorySink struct {
	mu      sync.Mutex
	results []PairResult
}

func (s *MemorySink) Emit(_ context.Context, res PairResult) error {
	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
	return nil
}

// Results returns a copy of the collected results.
func (s *MemorySink) Results() []PairResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PairResult(nil), s.results...)
}

// Paths flattens the collected paths.
func (s *MemorySink) Paths() []Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Path
	for i := range s.results {
		out = append(out, s.results[i].Paths...)
	}
	return out
}

// OverflowPolicy tells a bounded sink what to do when it is full.
type OverflowPolicy uint8

const (
	OverflowBlock OverflowPolicy = iota // wait for room, or for the context to end
	OverflowDrop                        // give the pair up and report ErrSinkFull
)

func (p OverflowPolicy) String() string {
	if p == OverflowDrop {
		return "drop"
	}
	return "block"
}

// ParseOverflowPolicy accepts "block" and "drop".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "block":
		return OverflowBlock, nil
	case "drop":
		return OverflowDrop, nil
	default:
		return OverflowBlock, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// ChannelSink is a bounded queue read through C. MaxPaths > 0 caps the
// total number of paths accepted; pairs past the cap are dropped.
type ChannelSink struct {
	C        chan PairResult
	Policy   OverflowPolicy
	MaxPaths int64

	mu      sync.Mutex
	closed  bool
	paths   int64
	dropped int64
}

// NewChannelSink creates a queue of the given capacity.
func NewChannelSink(capacity int, policy OverflowPolicy, maxPaths int64) *ChannelSink {
	if capacity <= 0 {
		capacity = DefaultSinkQueue
	}
	return &ChannelSink{C: make(chan PairResult, capacity), Policy: policy, MaxPaths: maxPaths}
}

func (s *ChannelSink) Emit(ctx context.Context, res PairResult) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSinkClosed
	}
	if s.MaxPaths > 0 && s.paths+int64(len(res.Paths)) > s.MaxPaths {
		s.dropped++
		s.mu.Unlock()
		return ErrSinkFull
	}
	s.paths += int64(len(res.Paths))
	s.mu.Unlock()

	if s.Policy == OverflowDrop {
		select {
		case s.C <- res:
			return nil
		default:
			s.unreserve(len(res.Paths))
			return ErrSinkFull
		}
	}
	select {
	case s.C <- res:
		return nil
	case <-ctx.Done():
		s.unreserve(len(res.Paths))
		return ctx.Err()
	}
}

func (s *ChannelSink) unreserve(n int) {
	s.mu.Lock()
	s.paths -= int64(n)
	s.dropped++
	s.mu.Unlock()
}

// Dropped is the number of pairs refused so far.
func (s *ChannelSink) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close ends the stream. It must not race with Emit: call it once the
// batch returned.
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.C)
	}
}

// GeoJSONSink buffers paths as GeoJSON features and writes one
// FeatureCollection on Flush.
type GeoJSONSink struct {
	mu sync.Mutex
	fc *geojson.FeatureCollection
	w  io.Writer
}

// NewGeoJSONSink writes to w on Flush.
func NewGeoJSONSink(w io.Writer) *GeoJSONSink {
	return &GeoJSONSink{fc: geojson.NewFeatureCollection(), w: w}
}

func (s *GeoJSONSink) Emit(_ context.Context, res PairResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range res.Paths {
		s.fc.Append(res.Paths[i].Feature())
	}
	return nil
}

// Len is the number of buffered features.
func (s *GeoJSONSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fc.Features)
}

// Flush writes the collection.
func (s *GeoJSONSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(s.fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal paths: %w", err)
	}
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write paths: %w", err)
	}
	return nil
}

// drain forwards queued results to dst until in is closed. After the first
// failure the rest is still read, so writers never block, but discarded.
func drain(ctx context.Context, in <-chan PairResult, dst PathSink) error {
	var first error
	for res := range in {
		if first != nil {
			continue
		}
		if err := dst.Emit(ctx, res); err != nil {
			first = fmt.Errorf("output pair %d/%d: %w", res.SourceID, res.ReceiverID, err)
			logger().Error("path output failed", "err", first)
		}
	}
	return first
}

// FuncSink adapts a function.
type FuncSink func(ctx context.Context, res PairResult) error

func (f FuncSink) Emit(ctx context.Context, res PairResult) error { return f(ctx, res) }
