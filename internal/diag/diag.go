// internal/diag/diag.go
//
// One-shot host diagnostics logged when a session opens. Purely
// observational; never gates protocol behavior.
package diag

import (
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/guiperry/garminlink/internal/logging"
)

// Snapshot is a coarse picture of the host at session-open time.
type Snapshot struct {
	HostUptime time.Duration
	Processes  int
}

// Collect gathers the snapshot. Failures are tolerated field by field; a
// zero value means the stat was unavailable.
func Collect() Snapshot {
	var snap Snapshot
	if uptime, err := host.Uptime(); err == nil {
		snap.HostUptime = time.Duration(uptime) * time.Second
	}
	if pids, err := process.Pids(); err == nil {
		snap.Processes = len(pids)
	}
	return snap
}

// LogSnapshot collects and logs the snapshot at Info level.
func LogSnapshot() {
	snap := Collect()
	logging.Infof("host: uptime %s, %d processes", snap.HostUptime, snap.Processes)
}
