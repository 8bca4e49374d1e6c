package applier

import (
	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"
)

// EnableDiagnosticsAgent starts a gops diagnostics listener, mirroring
// cmd/musclefs's gopsListen: an embedding long-running process (a
// sync daemon, say) can call this once at startup so `gops` can attach
// to inspect goroutines and memory while a pass is in flight. Failure
// to start is logged, not fatal — diagnostics are never load-bearing
// for a sync pass to complete.
func EnableDiagnosticsAgent() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.WithFields(log.Fields{"cause": err.Error()}).Warn("applier: could not start gops diagnostics agent")
	}
}
