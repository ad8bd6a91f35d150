// Package sync implements the group discovery and admin-role detection
// pipeline: a multi-pass paginated scan of the user's WhatsApp groups via
// the hosted gateway, role classification with locale-aware phone identity
// matching, and reconciliation against previously persisted data under a
// policy that never silently discards known-good groups.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wasegment/go-whatsapp-group-sync-api/internal/store"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/env"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/gateway"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/log"
)

// Configuration errors: the user's channel is not usable, retrying will
// not help until the user reconnects.
var (
	ErrNoGatewayToken = errors.New("user has no gateway token configured")
	ErrNotConnected   = errors.New("user channel is not connected")
)

// Gateway is the slice of the gateway client the orchestrator needs
type Gateway interface {
	GroupLister
	Me(ctx context.Context, token string) (*gateway.Identity, error)
}

// Store is the slice of the persisted store the orchestrator needs
type Store interface {
	Profile(ctx context.Context, userID string) (*store.UserProfile, error)
	SavePhone(ctx context.Context, userID string, phone string) error
	CountGroups(ctx context.Context, userID string) (int, error)
	ReplaceGroups(ctx context.Context, userID string, groups []store.GroupRecord) error
}

// Report is the structured outcome of one sync run. Every run produces
// exactly one of: committed success with counts, rejected with preserved
// data, or a hard configuration failure (returned as an error instead).
type Report struct {
	Success        bool   `json:"success"`
	Committed      bool   `json:"committed"`
	GroupsCount    int    `json:"groups_count"`
	AdminCount     int    `json:"admin_count"`
	CreatorCount   int    `json:"creator_count"`
	TotalMembers   int    `json:"total_members"`
	APICalls       int    `json:"api_calls"`
	GroupsScanned  int    `json:"groups_scanned"`
	ElapsedMS      int64  `json:"elapsed_ms"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation,omitempty"`
	ExistingCount  int    `json:"existing_count,omitempty"`
}

// Orchestrator wires the pipeline together for one user: credentials,
// identity resolution, the multi-pass fetch, the reconciliation guard and
// the final commit.
type Orchestrator struct {
	gateway     Gateway
	store       Store
	guard       Guard
	passes      []PassConfig
	countryCode string
	now         func() time.Time

	// concurrent triggers for the same user join the running sync
	inflight singleflight.Group
}

func NewOrchestrator(gw Gateway, st Store) *Orchestrator {
	threshold := env.GetEnvFloat64OrDefault("SYNC_PROTECTION_THRESHOLD", DefaultProtectionThreshold)
	countryCode := env.GetEnvStringOrDefault("SYNC_COUNTRY_CODE", "972")
	return &Orchestrator{
		gateway:     gw,
		store:       st,
		guard:       NewGuard(threshold),
		passes:      DefaultPassPlan(),
		countryCode: countryCode,
		now:         time.Now,
	}
}

// SyncUser runs one full sync for the user. Concurrent calls for the same
// user are serialized: later callers receive the in-flight run's report.
func (o *Orchestrator) SyncUser(ctx context.Context, userID string) (*Report, error) {
	v, err, _ := o.inflight.Do(userID, func() (interface{}, error) {
		return o.syncUser(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (o *Orchestrator) syncUser(ctx context.Context, userID string) (*Report, error) {
	started := o.now()
	log.SyncOp(userID, "SyncUser").Info("Starting group sync")

	profile, err := o.store.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.GatewayToken == "" {
		return nil, ErrNoGatewayToken
	}
	if !profile.Connected() {
		return nil, ErrNotConnected
	}

	phone, err := o.resolvePhone(ctx, userID, profile)
	if err != nil {
		return nil, err
	}

	identity := BuildIdentity(phone, o.countryCode)
	if identity.Empty() {
		return nil, fmt.Errorf("unusable phone identity %q for user %s", phone, userID)
	}

	fetcher := NewFetcher(o.gateway, profile.GatewayToken, userID, NewClassifier(identity), NewResultCache())
	outcome, err := fetcher.RunPasses(ctx, o.passes)
	if err != nil {
		return nil, err
	}

	existing, err := o.store.CountGroups(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision := o.guard.Decide(existing, len(outcome.Groups), outcome.HadTransientErrors)
	report := &Report{
		APICalls:      outcome.APICalls,
		GroupsScanned: outcome.GroupsScanned,
	}

	if !decision.Commit() {
		report.Success = false
		report.Committed = false
		report.GroupsCount = len(outcome.Groups)
		report.ExistingCount = existing
		report.Message = decision.Reason
		report.Recommendation = "existing groups were preserved; retry the sync later"
		report.ElapsedMS = o.now().Sub(started).Milliseconds()
		log.SyncOp(userID, "SyncUser").
			WithField("existing", existing).
			WithField("found", len(outcome.Groups)).
			Warn("Sync rejected: " + decision.Reason)
		return report, nil
	}

	records := make([]store.GroupRecord, 0, len(outcome.Groups))
	for _, g := range outcome.Groups {
		records = append(records, store.GroupRecord{
			UserID:            userID,
			GroupID:           g.GroupID,
			Name:              g.Name,
			Description:       g.Description,
			ParticipantsCount: g.ParticipantsCount,
			IsAdmin:           g.IsAdmin,
			IsCreator:         g.IsCreator,
			AvatarURL:         g.AvatarURL,
			LastSyncedAt:      g.LastSyncedAt,
		})
	}
	if err := o.store.ReplaceGroups(ctx, userID, records); err != nil {
		return nil, fmt.Errorf("persist groups for user %s: %w", userID, err)
	}

	report.Success = true
	report.Committed = true
	report.GroupsCount = len(records)
	report.AdminCount = len(records)
	for _, g := range outcome.Groups {
		if g.IsCreator {
			report.CreatorCount++
		}
		report.TotalMembers += g.ParticipantsCount
	}
	report.Message = fmt.Sprintf("Synced %d admin groups (%d created by you, %d members total)",
		report.GroupsCount, report.CreatorCount, report.TotalMembers)
	report.ElapsedMS = o.now().Sub(started).Milliseconds()

	log.SyncOp(userID, "SyncUser").
		WithField("groups", report.GroupsCount).
		WithField("creators", report.CreatorCount).
		WithField("api_calls", report.APICalls).
		WithField("elapsed_ms", report.ElapsedMS).
		Info("Sync committed")
	return report, nil
}

// resolvePhone prefers the stored identity; a missing value is fetched from
// the gateway once and persisted for future runs.
func (o *Orchestrator) resolvePhone(ctx context.Context, userID string, profile *store.UserProfile) (string, error) {
	if profile.Phone != "" {
		return profile.Phone, nil
	}

	ident, err := o.gateway.Me(ctx, profile.GatewayToken)
	if err != nil {
		return "", fmt.Errorf("resolve self identity for user %s: %w", userID, err)
	}
	phone := ident.PhoneOrID()
	if phone == "" {
		return "", fmt.Errorf("gateway returned empty self identity for user %s", userID)
	}

	if err := o.store.SavePhone(ctx, userID, phone); err != nil {
		log.SyncOp(userID, "SyncUser").WithError(err).Warn("Failed to persist resolved phone identity")
	}
	return phone, nil
}
