package srl

import "testing"

func TestStateMachine_DisabledOnlyReturnsViaReenable(t *testing.T) {
	s := &SRL{status: StateDisconnected}
	m := newStateMachine(s, 5, nil)

	if !m.transition(StateDisabled) {
		t.Fatalf("expected disconnected -> disabled to be legal")
	}
	if m.transition(StateConnected) {
		t.Fatalf("expected disabled -> connected to be rejected")
	}
	if !m.transition(StateDisconnected) {
		t.Fatalf("expected disabled -> disconnected (re-enable) to be legal")
	}
}

func TestStateMachine_BlacklistedIsTerminal(t *testing.T) {
	s := &SRL{status: StateDisconnected}
	m := newStateMachine(s, 5, nil)
	m.transition(StateBlacklisted)

	if m.transition(StateConnecting) {
		t.Fatalf("expected blacklisted to accept no further transitions")
	}
}

func TestStateMachine_RecordFailureBlacklistsAtThreshold(t *testing.T) {
	s := &SRL{status: StateDisconnected}
	m := newStateMachine(s, 2, nil)

	m.recordFailure("boom", 1)
	if s.Status() != StateDisconnected {
		t.Fatalf("Status() after 1 failure = %v, want disconnected", s.Status())
	}
	m.recordFailure("boom", 2)
	if s.Status() != StateBlacklisted {
		t.Fatalf("Status() after 2 failures (threshold) = %v, want blacklisted", s.Status())
	}
}

func TestStateMachine_RecordSuccessResetsFailureStreak(t *testing.T) {
	s := &SRL{status: StateConnecting}
	m := newStateMachine(s, 2, nil)

	m.recordFailure("boom", 1)
	m.recordSuccess(2)
	if s.consecutive != 0 {
		t.Fatalf("consecutive = %d, want 0 after success", s.consecutive)
	}
	if s.Status() != StateConnected {
		t.Fatalf("Status() = %v, want connected", s.Status())
	}
}
