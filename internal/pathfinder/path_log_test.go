package pathfinder

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestPathLogKeepsBoundedEvents(t *testing.T) {
	ResetPathLog()
	defer ResetPathLog()
	for i := 0; i < PathLogKeep+10; i++ {
		logPath("test_event", HullLimit, 1, int64(i), 3, orb.Point{Real(i), 0})
	}
	logPath("other", Degenerate, 1, 2, -1, orb.Point{})
	counts := PathLogCounts()
	assert.Equal(t, PathLogKeep+10, counts["test_event"])
	assert.Equal(t, 1, counts["other"])
	ev := PathLogEvents("test_event")
	assert.Len(t, ev, PathLogKeep)
	assert.Equal(t, int64(0), ev[0].ReceiverID)
	assert.Equal(t, "hull_limit", ev[0].Category.String())
	pathLogStats()
}

func TestPathLogDisabled(t *testing.T) {
	ResetPathLog()
	RecordLogs = false
	defer func() { RecordLogs = true }()
	logPath("ignored", Degenerate, 1, 2, -1, orb.Point{})
	assert.Empty(t, PathLogCounts())
}
