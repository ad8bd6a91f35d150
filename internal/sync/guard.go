package sync

import "fmt"

// Action is the reconciliation decision for a finished scan.
type Action string

const (
	ActionCommit Action = "commit"
	ActionReject Action = "reject"
)

// DefaultProtectionThreshold is the canonical suspicious-drop fraction:
// a new result set smaller than half the persisted set is rejected.
const DefaultProtectionThreshold = 0.5

// Decision carries the guard's verdict and a human-readable reason.
type Decision struct {
	Action Action
	Reason string
}

func (d Decision) Commit() bool {
	return d.Action == ActionCommit
}

// Guard encapsulates the policy that a sync must never silently lose
// known-good data. The gateway can return partial or empty results under
// load without a hard error; overwriting the store on every run would
// intermittently erase correctly-administered groups. A slightly stale
// dataset is the accepted trade.
type Guard struct {
	Threshold float64
}

func NewGuard(threshold float64) Guard {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultProtectionThreshold
	}
	return Guard{Threshold: threshold}
}

// Decide compares the fresh scan against the persisted state.
func (g Guard) Decide(existingCount int, newCount int, hadTransientErrors bool) Decision {
	if hadTransientErrors && newCount == 0 {
		return Decision{
			Action: ActionReject,
			Reason: fmt.Sprintf("gateway errors during scan and no groups found; keeping %d existing groups", existingCount),
		}
	}

	if existingCount > 0 && float64(newCount) < g.Threshold*float64(existingCount) {
		return Decision{
			Action: ActionReject,
			Reason: fmt.Sprintf("suspicious drop from %d to %d groups; keeping existing data", existingCount, newCount),
		}
	}

	return Decision{
		Action: ActionCommit,
		Reason: fmt.Sprintf("replacing %d groups with %d freshly scanned", existingCount, newCount),
	}
}
