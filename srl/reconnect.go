package srl

import (
	"sync"

	"github.com/robfig/cron/v3"
)

// Reconnector periodically sweeps the table's disconnected SRLs back
// toward connecting (spec §4.6 diagram implies an "automatic" path off
// disconnected without naming a mechanism). Disabled and blacklisted SRLs
// are never touched — only an explicit Reenable moves those. Grounded on
// the teacher's use of robfig/cron for periodic background jobs
// (services/datafeed), adapted to a Start/Stop lifecycle like
// internal/marble.Worker.
type Reconnector struct {
	table    *Table
	schedule string

	mu      sync.Mutex
	cronJob *cron.Cron
	running bool
}

// NewReconnector builds a Reconnector on schedule (a robfig/cron
// expression, e.g. "@every 1m").
func NewReconnector(table *Table, schedule string) *Reconnector {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &Reconnector{table: table, schedule: schedule}
}

// Start launches the background sweep. Calling Start twice is a no-op.
func (r *Reconnector) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, r.sweep); err != nil {
		return err
	}
	c.Start()
	r.cronJob = c
	r.running = true
	return nil
}

// Stop halts the background sweep and waits for any in-flight run to
// finish.
func (r *Reconnector) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	ctx := r.cronJob.Stop()
	<-ctx.Done()
	r.running = false
}

// sweep moves every disconnected SRL to connecting, one attempt per tick;
// the next fetch attempt (success or failure) decides where it lands next.
func (r *Reconnector) sweep() {
	r.table.mu.RLock()
	candidates := make([]*SRL, 0)
	for _, s := range r.table.byID {
		if s.Status() == StateDisconnected {
			candidates = append(candidates, s)
		}
	}
	r.table.mu.RUnlock()

	for _, s := range candidates {
		r.table.mu.RLock()
		m := r.table.machines[s.ID]
		r.table.mu.RUnlock()
		m.transition(StateConnecting)
	}
}
