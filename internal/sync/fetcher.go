package sync

import (
	"context"
	"time"

	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/gateway"
	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/log"
)

// PassConfig describes one paginated scan attempt over the group list.
// Later passes use bigger batches and longer delays: they exist to pick up
// groups the gateway had not materialized participant data for earlier.
type PassConfig struct {
	BatchSize    int
	Delay        time.Duration
	MaxCalls     int
	StartupDelay time.Duration
}

// DefaultPassPlan is the multi-pass discovery schedule. Declarative data
// consumed by one generic pass runner.
func DefaultPassPlan() []PassConfig {
	return []PassConfig{
		{BatchSize: 50, Delay: 2200 * time.Millisecond, MaxCalls: 12, StartupDelay: 0},
		{BatchSize: 100, Delay: 2800 * time.Millisecond, MaxCalls: 8, StartupDelay: 5 * time.Second},
		{BatchSize: 200, Delay: 3400 * time.Millisecond, MaxCalls: 6, StartupDelay: 8 * time.Second},
		{BatchSize: 500, Delay: 4600 * time.Millisecond, MaxCalls: 4, StartupDelay: 10 * time.Second},
	}
}

// GroupLister is the slice of the gateway client the fetcher needs
type GroupLister interface {
	ListGroups(ctx context.Context, token string, count int, offset int) ([]gateway.Group, error)
	GetGroup(ctx context.Context, token string, groupID string) (*gateway.Group, error)
}

// FetchOutcome aggregates one full multi-pass scan.
type FetchOutcome struct {
	Groups             []GroupResult
	APICalls           int
	GroupsScanned      int
	HadTransientErrors bool
}

// Fetcher drives the paginated group listing across passes, classifying each
// fetched group as it arrives. Classification is deliberately serialized to
// respect the gateway's rate limits.
type Fetcher struct {
	gateway    GroupLister
	token      string
	userID     string
	classifier *Classifier
	cache      *ResultCache

	// sleep is swappable so tests run without real delays
	sleep func(context.Context, time.Duration) error

	madeCall bool
	outcome  FetchOutcome
}

func NewFetcher(gw GroupLister, token string, userID string, classifier *Classifier, cache *ResultCache) *Fetcher {
	return &Fetcher{
		gateway:    gw,
		token:      token,
		userID:     userID,
		classifier: classifier,
		cache:      cache,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RunPasses executes the scan plan. Transient gateway failures never
// propagate as errors; they end the affected pass and flag the outcome.
// Only context cancellation returns an error.
func (f *Fetcher) RunPasses(ctx context.Context, passes []PassConfig) (*FetchOutcome, error) {
	for i, pass := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := f.sleep(ctx, pass.StartupDelay); err != nil {
			return nil, err
		}

		before := len(f.cache.ApprovedGroups())
		if err := f.runPass(ctx, i+1, pass); err != nil {
			return nil, err
		}
		after := len(f.cache.ApprovedGroups())

		log.SyncOp(f.userID, "ScanPass").
			WithField("pass", i+1).
			WithField("admin_groups", after).
			WithField("new_admin_groups", after-before).
			Info("Pass finished")

		// Diminishing returns: a pass that surfaced nothing new means the
		// remaining, slower passes will not either.
		if after > 0 && after == before {
			break
		}
	}

	f.outcome.Groups = f.cache.ApprovedGroups()
	return &f.outcome, nil
}

func (f *Fetcher) runPass(ctx context.Context, passNum int, pass PassConfig) error {
	offset := 0
	calls := 0
	emptyPages := 0

	for calls < pass.MaxCalls {
		if err := ctx.Err(); err != nil {
			return err
		}
		// No delay before the very first call of the very first pass.
		if f.madeCall {
			if err := f.sleep(ctx, pass.Delay); err != nil {
				return err
			}
		}

		groups, err := f.gateway.ListGroups(ctx, f.token, pass.BatchSize, offset)
		calls++
		f.outcome.APICalls++
		f.madeCall = true

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !gateway.IsRetryable(err) {
				log.SyncOp(f.userID, "ScanPass").WithField("pass", passNum).WithError(err).Warn("Non-retryable gateway error, aborting pass")
				f.outcome.HadTransientErrors = true
				return nil
			}
			if calls >= pass.MaxCalls {
				log.SyncOp(f.userID, "ScanPass").WithField("pass", passNum).WithError(err).Warn("Call budget exhausted on retryable error")
				f.outcome.HadTransientErrors = true
				return nil
			}
			// Retry the same offset after an extended backoff.
			if err := f.sleep(ctx, 2*pass.Delay); err != nil {
				return err
			}
			continue
		}

		f.outcome.GroupsScanned += len(groups)

		if len(groups) == 0 {
			emptyPages++
			if emptyPages >= 2 {
				return nil
			}
			offset += pass.BatchSize
			continue
		}
		emptyPages = 0

		for _, group := range groups {
			if err := f.processGroup(ctx, group); err != nil {
				return err
			}
		}

		if len(groups) < pass.BatchSize {
			return nil
		}
		offset += pass.BatchSize
	}
	return nil
}

// processGroup classifies one fetched record, consulting the cache first.
// A group with no participant data gets one immediate detail-fetch fallback;
// after that the cache's bounded retry policy takes over.
func (f *Fetcher) processGroup(ctx context.Context, group gateway.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if f.cache.Has(group.ID) {
		status, _ := f.cache.Classification(group.ID)
		if status != StatusNoParticipants || !f.cache.ShouldRetry(group.ID) {
			return nil
		}
	}

	cls := f.classifier.Classify(group)
	if cls.Skip == SkipNoParticipants {
		detail, err := f.gateway.GetGroup(ctx, f.token, group.ID)
		f.outcome.APICalls++
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.GatewayOp(f.userID, "GetGroup").WithField("group_id", group.ID).WithError(err).Warn("Group detail fetch failed")
			if !gateway.IsRetryable(err) {
				f.outcome.HadTransientErrors = true
			}
		} else if detail != nil {
			cls = f.classifier.Classify(*detail)
		}
	}

	f.cache.Record(group.ID, cls.Status(), cls.Result)
	return nil
}
