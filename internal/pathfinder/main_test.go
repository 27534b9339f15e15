package pathfinder

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	RecordLogs = true
	SetLogger(nil)
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}
