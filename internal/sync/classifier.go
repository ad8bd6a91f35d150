package sync

import (
	"strings"
	"time"

	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/gateway"
)

// SkipReason explains why a fetched group was not accepted as an admin group.
type SkipReason string

const (
	SkipNoParticipants SkipReason = "no_participants_loaded"
	SkipNotMember      SkipReason = "not_member"
	SkipMemberOnly     SkipReason = "member_only"
)

// GroupResult is one accepted group where the user holds admin or creator role.
type GroupResult struct {
	GroupID           string    `json:"group_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	ParticipantsCount int       `json:"participants_count"`
	IsAdmin           bool      `json:"is_admin"`
	IsCreator         bool      `json:"is_creator"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	LastSyncedAt      time.Time `json:"last_synced_at"`
}

// Classification is the outcome of classifying one fetched group record.
// Exactly one of Result and Skip is meaningful.
type Classification struct {
	Result *GroupResult
	Skip   SkipReason
}

func (c Classification) Accepted() bool {
	return c.Result != nil
}

// Status maps the classification onto the cache status vocabulary
func (c Classification) Status() Status {
	if c.Result != nil {
		return StatusAdmin
	}
	switch c.Skip {
	case SkipNoParticipants:
		return StatusNoParticipants
	case SkipMemberOnly:
		return StatusMemberOnly
	default:
		return StatusNotMember
	}
}

// participantIdentifiers is the ordered list of candidate identifier fields
// probed per participant. The gateway schema has shifted between releases,
// so older and newer field names are all tried.
var participantIdentifiers = []func(gateway.Participant) string{
	func(p gateway.Participant) string { return p.ID },
	func(p gateway.Participant) string { return p.Phone },
	func(p gateway.Participant) string { return p.Number },
	func(p gateway.Participant) string { return p.Contact },
}

// adminRanks are the textual role values that grant admin standing
var adminRanks = map[string]bool{
	"admin":         true,
	"administrator": true,
	"moderator":     true,
}

// creatorRanks are the textual role values that mark group ownership
var creatorRanks = map[string]bool{
	"creator": true,
	"owner":   true,
}

// Classifier decides membership and role for fetched group records.
// Pure classification over already-fetched data; it never touches the network.
type Classifier struct {
	identity IdentitySet
	now      func() time.Time
}

func NewClassifier(identity IdentitySet) *Classifier {
	return &Classifier{identity: identity, now: time.Now}
}

// Classify determines whether the user administers the given group.
func (cl *Classifier) Classify(group gateway.Group) Classification {
	if len(group.Participants) == 0 {
		return Classification{Skip: SkipNoParticipants}
	}

	participant, matchedID, found := cl.findSelf(group.Participants)
	if !found {
		return Classification{Skip: SkipNotMember}
	}

	rank := strings.ToLower(strings.TrimSpace(participant.Rank))
	isCreator := creatorRanks[rank]
	isAdmin := isCreator || participant.IsAdmin || adminRanks[rank]
	if !isAdmin {
		return Classification{Skip: SkipMemberOnly}
	}

	// When the group carries an explicit creator field, only an exact match
	// against the user's own identifier counts as ownership. The rank signal
	// alone cannot distinguish the sole true owner from other admins.
	if group.Creator != "" {
		isCreator = group.Creator == matchedID
	}

	count := len(group.Participants)
	if count == 0 && group.Size > 0 {
		count = group.Size
	}

	return Classification{Result: &GroupResult{
		GroupID:           group.ID,
		Name:              group.DisplayName(),
		Description:       group.Description,
		ParticipantsCount: count,
		IsAdmin:           true,
		IsCreator:         isCreator,
		AvatarURL:         group.ChatPic,
		LastSyncedAt:      cl.now(),
	}}
}

// findSelf scans participants for one whose identifier matches the identity
// set, probing every candidate field in order.
func (cl *Classifier) findSelf(participants []gateway.Participant) (gateway.Participant, string, bool) {
	for _, p := range participants {
		for _, extract := range participantIdentifiers {
			id := extract(p)
			if id == "" {
				continue
			}
			if cl.identity.Matches(id) {
				return p, id, true
			}
		}
	}
	return gateway.Participant{}, "", false
}
