package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardDecide(t *testing.T) {
	guard := NewGuard(0.5)

	cases := []struct {
		name      string
		existing  int
		found     int
		transient bool
		commit    bool
	}{
		{"errors and nothing found keeps existing", 50, 0, true, false},
		{"errors but groups found commits", 50, 40, true, true},
		{"suspicious drop rejected", 100, 20, false, false},
		{"moderate drop commits", 100, 80, false, true},
		{"drop exactly at threshold commits", 100, 50, false, true},
		{"one below threshold rejects", 100, 49, false, false},
		{"first sync with empty store commits", 0, 12, false, true},
		{"clean empty result with empty store commits", 0, 0, false, true},
		{"empty result over empty store with errors rejects", 0, 0, true, false},
		{"growth always commits", 10, 25, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := guard.Decide(tc.existing, tc.found, tc.transient)
			assert.Equal(t, tc.commit, decision.Commit())
			assert.NotEmpty(t, decision.Reason)
		})
	}
}

func TestNewGuardClampsInvalidThreshold(t *testing.T) {
	assert.Equal(t, DefaultProtectionThreshold, NewGuard(0).Threshold)
	assert.Equal(t, DefaultProtectionThreshold, NewGuard(-1).Threshold)
	assert.Equal(t, DefaultProtectionThreshold, NewGuard(1.5).Threshold)
	assert.Equal(t, 0.7, NewGuard(0.7).Threshold)
}
