package pathfinder

import (
	"fmt"
	"sort"
	"sync"

	"github.com/paulmach/orb"
)

type Category uint8

const (
	Degenerate  Category = iota // numerically degenerate geometry
	OutsideWall                 // reflection point off the finite wall segment
	AboveWall                   // path passes over the reflecting wall
	Obstructed                  // a leg is cut by unrelated geometry
	WrongSide                   // path reaches the wall from its inner side
	HullLimit                   // side hull did not converge
	PairFailure                 // whole pair failed
)

func (c Category) String() string {
	switch c {
	case Degenerate:
		return "degenerate"
	case OutsideWall:
		return "outside_wall"
	case AboveWall:
		return "above_wall"
	case Obstructed:
		return "obstructed"
	case WrongSide:
		return "wrong_side"
	case HullLimit:
		return "hull_limit"
	case PairFailure:
		return "pair_failure"
	default:
		return "unknown"
	}
}

// PathLogKeep is the number of events kept per name; the rest are only counted.
const PathLogKeep = 64

// PathLog is one skipped-path event.
type PathLog struct {
	Name       string
	Category   Category
	SourceID   int64
	ReceiverID int64
	WallID     int
	Point      orb.Point
}

type PathLogCache struct {
	mu     sync.Mutex
	events map[string][]PathLog
	counts map[string]int
}

var pathLog = newPathLogCache()

func newPathLogCache() *PathLogCache {
	return &PathLogCache{events: make(map[string][]PathLog), counts: make(map[string]int)}
}

func logPath(name string, category Category, srcID, rcvID int64, wallID int, p orb.Point) {
	if !RecordLogs {
		return
	}
	pathLog.mu.Lock()
	defer pathLog.mu.Unlock()
	pathLog.counts[name]++
	if len(pathLog.events[name]) < PathLogKeep {
		pathLog.events[name] = append(pathLog.events[name], PathLog{
			Name:       name,
			Category:   category,
			SourceID:   srcID,
			ReceiverID: rcvID,
			WallID:     wallID,
			Point:      p,
		})
	}
}

// PathLogCounts returns the number of events recorded per name.
func PathLogCounts() map[string]int {
	pathLog.mu.Lock()
	defer pathLog.mu.Unlock()
	out := make(map[string]int, len(pathLog.counts))
	for k, v := range pathLog.counts {
		out[k] = v
	}
	return out
}

// PathLogEvents returns the kept events of one name.
func PathLogEvents(name string) []PathLog {
	pathLog.mu.Lock()
	defer pathLog.mu.Unlock()
	return append([]PathLog(nil), pathLog.events[name]...)
}

// ResetPathLog drops every recorded event.
func ResetPathLog() {
	pathLog.mu.Lock()
	pathLog.events = make(map[string][]PathLog)
	pathLog.counts = make(map[string]int)
	pathLog.mu.Unlock()
}

func pathLogStats() {
	counts := PathLogCounts()
	names := make([]string, 0, len(counts))
	for k := range counts {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		logger().Info(fmt.Sprintf("Skipped path type %s: %d events", k, counts[k]))
	}
}
