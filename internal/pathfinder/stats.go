package pathfinder

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stats counts the work of a batch. Counters are atomic and mirrored into
// prometheus metrics registered on the registerer given to NewStats. Every
// pair lands in exactly one of PairsProcessed, PairsFailed and PairsDropped.
type Stats struct {
	PairsProcessed     atomic.Int64
	PairsFailed        atomic.Int64
	PairsDropped       atomic.Int64
	ReceiversProcessed atomic.Int64
	MirrorImages       atomic.Int64
	paths              [ReflectionPath + 1]atomic.Int64

	pairTotal        *prometheus.CounterVec
	pathTotal        *prometheus.CounterVec
	receiverTotal    prometheus.Counter
	mirrorImages     prometheus.Histogram
	receiverDuration prometheus.Histogram
}

// NewStats registers the metrics on reg. A nil reg keeps them unregistered.
func NewStats(reg prometheus.Registerer) *Stats {
	f := promauto.With(reg)
	return &Stats{
		// pairTotal counts pairs by outcome
		pairTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cnossos_pairs_total",
			Help: "Source/receiver pairs by outcome",
		}, []string{"result"}), // "ok", "failed" or "dropped"
		pathTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cnossos_paths_total",
			Help: "Propagation paths found by kind",
		}, []string{"kind"}),
		receiverTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "cnossos_receivers_total",
			Help: "Receivers processed",
		}),
		mirrorImages: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cnossos_mirror_images",
			Help:    "Receiver images per mirror tree",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to ~16k
		}),
		receiverDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cnossos_receiver_duration_seconds",
			Help:    "Time spent on one receiver",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}),
	}
}

func (s *Stats) pairDone(paths []Path) {
	s.PairsProcessed.Add(1)
	s.pairTotal.WithLabelValues("ok").Inc()
	for i := range paths {
		s.paths[paths[i].Kind].Add(1)
		s.pathTotal.WithLabelValues(paths[i].Kind.String()).Inc()
	}
}

func (s *Stats) pairFailed() {
	s.PairsFailed.Add(1)
	s.pairTotal.WithLabelValues("failed").Inc()
}

func (s *Stats) pairDropped() {
	s.PairsDropped.Add(1)
	s.pairTotal.WithLabelValues("dropped").Inc()
}

func (s *Stats) receiverDone(images int, took time.Duration) {
	s.ReceiversProcessed.Add(1)
	s.MirrorImages.Add(int64(images))
	s.receiverTotal.Inc()
	s.mirrorImages.Observe(float64(images))
	s.receiverDuration.Observe(took.Seconds())
}

// Paths returns the number of paths found of one kind.
func (s *Stats) Paths(k PathKind) int64 { return s.paths[k].Load() }

// StatsSnapshot is a plain copy of the counters.
type StatsSnapshot struct {
	PairsProcessed     int64            `json:"pairsProcessed" yaml:"pairsProcessed"`
	PairsFailed        int64            `json:"pairsFailed" yaml:"pairsFailed"`
	PairsDropped       int64            `json:"pairsDropped" yaml:"pairsDropped"`
	ReceiversProcessed int64            `json:"receiversProcessed" yaml:"receiversProcessed"`
	MirrorImages       int64            `json:"mirrorImages" yaml:"mirrorImages"`
	Paths              map[string]int64 `json:"paths" yaml:"paths"`
}

// Snapshot reads every counter.
func (s *Stats) Snapshot() StatsSnapshot {
	out := StatsSnapshot{
		PairsProcessed:     s.PairsProcessed.Load(),
		PairsFailed:        s.PairsFailed.Load(),
		PairsDropped:       s.PairsDropped.Load(),
		ReceiversProcessed: s.ReceiversProcessed.Load(),
		MirrorImages:       s.MirrorImages.Load(),
		Paths:              make(map[string]int64, len(s.paths)),
	}
	for k := DirectPath; k <= ReflectionPath; k++ {
		out.Paths[k.String()] = s.paths[k].Load()
	}
	return out
}
