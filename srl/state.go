package srl

import (
	"sync"
)

// State is the SRL lifecycle state (spec §4.6 state diagram), modeled on
// the circuit breaker's closed/open/half-open machine: connected is
// closed, disconnected is open, connecting is half-open.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateDisabled
	StateBlacklisted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisabled:
		return "disabled"
	case StateBlacklisted:
		return "blacklisted"
	default:
		return "unknown"
	}
}

// OnStateChange is invoked (asynchronously, like the circuit breaker's
// equivalent hook) whenever a transition actually changes state.
type OnStateChange func(srlID string, from, to State)

// transitions is the closed table of legal moves (spec §4.6 diagram):
// disabled and blacklisted accept only an explicit re-enable, never an
// automatic path back to connected.
var transitions = map[State]map[State]bool{
	StateDisconnected: {StateConnecting: true, StateDisabled: true, StateBlacklisted: true},
	StateConnecting:   {StateConnected: true, StateDisconnected: true, StateDisabled: true, StateBlacklisted: true},
	StateConnected:    {StateDisconnected: true, StateDisabled: true, StateBlacklisted: true},
	StateDisabled:     {StateDisconnected: true}, // explicit re-enable only
	StateBlacklisted:  {},
}

// stateMachine guards one SRL's status transitions with its own lock so
// independent SRLs never contend (spec §5 sharded-lock discipline applied
// per-resource here since each SRL's state machine is already a single
// mutex's worth of work).
type stateMachine struct {
	mu              sync.Mutex
	srl             *SRL
	onChange        OnStateChange
	failureThreshold int
}

func newStateMachine(s *SRL, threshold int, onChange OnStateChange) *stateMachine {
	return &stateMachine{srl: s, failureThreshold: threshold, onChange: onChange}
}

// transition atomically moves the SRL to to if legal, logging through
// onChange; illegal transitions are silently refused (spec: "status
// transitions are atomic and logged").
func (m *stateMachine) transition(to State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(to)
}

func (m *stateMachine) transitionLocked(to State) bool {
	from := m.srl.status
	if from == to {
		return true
	}
	if !transitions[from][to] {
		return false
	}
	m.srl.status = to
	if m.onChange != nil {
		go m.onChange(m.srl.ID.String(), from, to)
	}
	return true
}

// recordSuccess moves the SRL to connected, resets the consecutive-failure
// counter, and stamps lastUsedAt/fetchCount.
func (m *stateMachine) recordSuccess(nowUnixMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.srl.status == StateDisconnected {
		m.transitionLocked(StateConnecting)
	}
	m.transitionLocked(StateConnected)
	m.srl.consecutive = 0
	m.srl.fetchCount++
	m.srl.lastUsedUnx = nowUnixMs
}

// recordFailure moves the SRL to disconnected and, once consecutive
// failures reach the configured threshold, to blacklisted (spec §4.6 step
// 6: "repeated failures beyond a threshold transition the SRL to
// blacklisted").
func (m *stateMachine) recordFailure(sanitizedErr string, nowUnixMs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.srl.consecutive++
	m.srl.lastError = sanitizedErr
	m.srl.lastUsedUnx = nowUnixMs
	if m.srl.consecutive >= m.failureThreshold {
		m.transitionLocked(StateBlacklisted)
		return
	}
	m.transitionLocked(StateDisconnected)
}
