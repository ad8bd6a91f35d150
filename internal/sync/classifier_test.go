package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/gateway"
)

func testClassifier() *Classifier {
	cl := NewClassifier(BuildIdentity("972501234567", "972"))
	cl.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return cl
}

func TestClassifySkipsGroupWithoutParticipants(t *testing.T) {
	cls := testClassifier().Classify(gateway.Group{ID: "g1", Size: 40})

	assert.False(t, cls.Accepted())
	assert.Equal(t, SkipNoParticipants, cls.Skip)
	assert.Equal(t, StatusNoParticipants, cls.Status())
}

func TestClassifySkipsGroupWhereUserIsAbsent(t *testing.T) {
	cls := testClassifier().Classify(gateway.Group{
		ID: "g1",
		Participants: []gateway.Participant{
			{ID: "972509999999@s.whatsapp.net", IsAdmin: true},
		},
	})

	assert.Equal(t, SkipNotMember, cls.Skip)
	assert.Equal(t, StatusNotMember, cls.Status())
}

func TestClassifySkipsMemberWithoutAdminRole(t *testing.T) {
	cls := testClassifier().Classify(gateway.Group{
		ID: "g1",
		Participants: []gateway.Participant{
			{ID: "972501234567@s.whatsapp.net", Rank: "member"},
		},
	})

	assert.Equal(t, SkipMemberOnly, cls.Skip)
	assert.Equal(t, StatusMemberOnly, cls.Status())
}

func TestClassifyAcceptsAdminFlag(t *testing.T) {
	cls := testClassifier().Classify(gateway.Group{
		ID:   "g1",
		Name: "Team",
		Participants: []gateway.Participant{
			{ID: "972509999999@s.whatsapp.net"},
			{ID: "972501234567@s.whatsapp.net", IsAdmin: true},
		},
	})

	require.True(t, cls.Accepted())
	assert.True(t, cls.Result.IsAdmin)
	assert.False(t, cls.Result.IsCreator)
	assert.Equal(t, "Team", cls.Result.Name)
	assert.Equal(t, 2, cls.Result.ParticipantsCount)
	assert.Equal(t, StatusAdmin, cls.Status())
}

func TestClassifyAcceptsTextualAdminRank(t *testing.T) {
	for _, rank := range []string{"admin", "Administrator", " MODERATOR "} {
		cls := testClassifier().Classify(gateway.Group{
			ID: "g1",
			Participants: []gateway.Participant{
				{ID: "972501234567@s.whatsapp.net", Rank: rank},
			},
		})
		require.True(t, cls.Accepted(), "rank %q should grant admin", rank)
		assert.False(t, cls.Result.IsCreator)
	}
}

func TestClassifyCreatorRankImpliesAdmin(t *testing.T) {
	cls := testClassifier().Classify(gateway.Group{
		ID: "g1",
		Participants: []gateway.Participant{
			{ID: "972501234567@s.whatsapp.net", Rank: "creator"},
		},
	})

	require.True(t, cls.Accepted())
	assert.True(t, cls.Result.IsAdmin)
	assert.True(t, cls.Result.IsCreator)
}

func TestClassifyCreatorFieldDisambiguates(t *testing.T) {
	// Creator rank but the group's creator field names someone else:
	// admin yes, owner no.
	cls := testClassifier().Classify(gateway.Group{
		ID:      "g1",
		Creator: "972509999999@s.whatsapp.net",
		Participants: []gateway.Participant{
			{ID: "972501234567@s.whatsapp.net", Rank: "owner"},
		},
	})
	require.True(t, cls.Accepted())
	assert.True(t, cls.Result.IsAdmin)
	assert.False(t, cls.Result.IsCreator)

	// Exact creator field match confirms ownership
	cls = testClassifier().Classify(gateway.Group{
		ID:      "g2",
		Creator: "972501234567@s.whatsapp.net",
		Participants: []gateway.Participant{
			{ID: "972501234567@s.whatsapp.net", Rank: "owner"},
		},
	})
	require.True(t, cls.Accepted())
	assert.True(t, cls.Result.IsCreator)
}

func TestClassifyProbesAlternateIdentifierFields(t *testing.T) {
	cls := testClassifier().Classify(gateway.Group{
		ID: "g1",
		Participants: []gateway.Participant{
			{Number: "0501234567", IsAdmin: true},
		},
	})

	require.True(t, cls.Accepted())
}

func TestClassifyFallsBackToSubjectName(t *testing.T) {
	cls := testClassifier().Classify(gateway.Group{
		ID:      "g1",
		Subject: "Legacy Subject",
		Participants: []gateway.Participant{
			{ID: "972501234567@s.whatsapp.net", IsAdmin: true},
		},
	})

	require.True(t, cls.Accepted())
	assert.Equal(t, "Legacy Subject", cls.Result.Name)
}
