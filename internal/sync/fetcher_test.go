package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/gateway"
)

type listPage struct {
	groups []gateway.Group
	err    error
}

type fakeLister struct {
	pages       []listPage
	details     map[string]*gateway.Group
	detailErr   error
	listCalls   int
	detailCalls int
	offsets     []int
}

func (f *fakeLister) ListGroups(_ context.Context, _ string, _ int, offset int) ([]gateway.Group, error) {
	f.offsets = append(f.offsets, offset)
	if f.listCalls >= len(f.pages) {
		f.listCalls++
		return nil, nil
	}
	page := f.pages[f.listCalls]
	f.listCalls++
	return page.groups, page.err
}

func (f *fakeLister) GetGroup(_ context.Context, _ string, groupID string) (*gateway.Group, error) {
	f.detailCalls++
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.details[groupID], nil
}

func selfAdmin() gateway.Participant {
	return gateway.Participant{ID: "972501234567@s.whatsapp.net", IsAdmin: true}
}

func otherMember() gateway.Participant {
	return gateway.Participant{ID: "972509999999@s.whatsapp.net"}
}

func adminGroup(id string) gateway.Group {
	return gateway.Group{ID: id, Name: id, Participants: []gateway.Participant{selfAdmin(), otherMember()}}
}

func memberGroup(id string) gateway.Group {
	return gateway.Group{ID: id, Name: id, Participants: []gateway.Participant{{ID: "972501234567@s.whatsapp.net"}, otherMember()}}
}

func newTestFetcher(lister *fakeLister) (*Fetcher, *[]time.Duration) {
	classifier := NewClassifier(BuildIdentity("972501234567", "972"))
	f := NewFetcher(lister, "token", "user-1", classifier, NewResultCache())

	var sleeps []time.Duration
	f.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return f, &sleeps
}

func TestFetcherStopsOnShortPage(t *testing.T) {
	lister := &fakeLister{pages: []listPage{
		{groups: []gateway.Group{adminGroup("g1"), memberGroup("g2")}},
		{groups: []gateway.Group{adminGroup("g3")}},
	}}
	f, _ := newTestFetcher(lister)

	outcome, err := f.RunPasses(context.Background(), []PassConfig{
		{BatchSize: 2, Delay: time.Second, MaxCalls: 10},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, lister.listCalls)
	assert.Equal(t, []int{0, 2}, lister.offsets)
	assert.Equal(t, 2, outcome.APICalls)
	assert.Equal(t, 3, outcome.GroupsScanned)
	assert.False(t, outcome.HadTransientErrors)
	require.Len(t, outcome.Groups, 2)
	assert.Equal(t, "g1", outcome.Groups[0].GroupID)
	assert.Equal(t, "g3", outcome.Groups[1].GroupID)
}

func TestFetcherRetriesSameOffsetAfterTransientError(t *testing.T) {
	lister := &fakeLister{pages: []listPage{
		{err: &gateway.Error{StatusCode: 503}},
		{groups: []gateway.Group{adminGroup("g1")}},
	}}
	f, sleeps := newTestFetcher(lister)

	outcome, err := f.RunPasses(context.Background(), []PassConfig{
		{BatchSize: 50, Delay: time.Second, MaxCalls: 5},
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0}, lister.offsets, "retry repeats the failed offset")
	assert.Contains(t, *sleeps, 2*time.Second, "retry uses the extended backoff")
	assert.False(t, outcome.HadTransientErrors, "a recovered retry is not an incomplete scan")
	assert.Len(t, outcome.Groups, 1)
}

func TestFetcherAbortsPassOnClientError(t *testing.T) {
	lister := &fakeLister{pages: []listPage{
		{err: &gateway.Error{StatusCode: 400, Body: "bad request"}},
	}}
	f, _ := newTestFetcher(lister)

	outcome, err := f.RunPasses(context.Background(), []PassConfig{
		{BatchSize: 50, Delay: time.Second, MaxCalls: 5},
	})
	require.NoError(t, err, "gateway failures never surface as sync errors")

	assert.Equal(t, 1, lister.listCalls)
	assert.True(t, outcome.HadTransientErrors)
	assert.Empty(t, outcome.Groups)
}

func TestFetcherFlagsExhaustedCallBudget(t *testing.T) {
	lister := &fakeLister{pages: []listPage{
		{err: &gateway.Error{StatusCode: 503}},
		{err: &gateway.Error{StatusCode: 503}},
	}}
	f, _ := newTestFetcher(lister)

	outcome, err := f.RunPasses(context.Background(), []PassConfig{
		{BatchSize: 50, Delay: time.Second, MaxCalls: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, lister.listCalls)
	assert.True(t, outcome.HadTransientErrors)
}

func TestFetcherEndsPassAfterTwoConsecutiveEmptyPages(t *testing.T) {
	lister := &fakeLister{pages: []listPage{
		{groups: nil},
		{groups: nil},
		{groups: []gateway.Group{adminGroup("never-reached")}},
	}}
	f, _ := newTestFetcher(lister)

	outcome, err := f.RunPasses(context.Background(), []PassConfig{
		{BatchSize: 50, Delay: time.Second, MaxCalls: 10},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, lister.listCalls)
	assert.Empty(t, outcome.Groups)
}

func TestFetcherSkipsRemainingPassesWithoutNewAdmins(t *testing.T) {
	lister := &fakeLister{pages: []listPage{
		{groups: []gateway.Group{adminGroup("g1")}},
		{groups: []gateway.Group{adminGroup("g1")}},
		{groups: []gateway.Group{adminGroup("g1")}},
	}}
	f, _ := newTestFetcher(lister)

	plan := []PassConfig{
		{BatchSize: 50, Delay: time.Second, MaxCalls: 4},
		{BatchSize: 100, Delay: time.Second, MaxCalls: 4},
		{BatchSize: 200, Delay: time.Second, MaxCalls: 4},
	}
	outcome, err := f.RunPasses(context.Background(), plan)
	require.NoError(t, err)

	// Pass 2 surfaced nothing new, so pass 3 never runs
	assert.Equal(t, 2, lister.listCalls)
	assert.Len(t, outcome.Groups, 1)
}

func TestFetcherDetailFetchRecoversMissingParticipants(t *testing.T) {
	bare := gateway.Group{ID: "g1", Name: "g1", Size: 12}
	detail := adminGroup("g1")
	lister := &fakeLister{
		pages:   []listPage{{groups: []gateway.Group{bare}}},
		details: map[string]*gateway.Group{"g1": &detail},
	}
	f, _ := newTestFetcher(lister)

	outcome, err := f.RunPasses(context.Background(), []PassConfig{
		{BatchSize: 50, Delay: time.Second, MaxCalls: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, lister.detailCalls)
	assert.Equal(t, 2, outcome.APICalls, "detail fetch counts toward the call total")
	require.Len(t, outcome.Groups, 1)
	assert.Equal(t, "g1", outcome.Groups[0].GroupID)
}

func TestFetcherRecordsNoParticipantsWhenDetailFails(t *testing.T) {
	bare := gateway.Group{ID: "g1", Size: 12}
	lister := &fakeLister{
		pages:     []listPage{{groups: []gateway.Group{bare}}},
		detailErr: &gateway.Error{StatusCode: 404},
	}
	f, _ := newTestFetcher(lister)

	outcome, err := f.RunPasses(context.Background(), []PassConfig{
		{BatchSize: 50, Delay: time.Second, MaxCalls: 4},
	})
	require.NoError(t, err)

	assert.Empty(t, outcome.Groups)
	status, ok := f.cache.Classification("g1")
	require.True(t, ok)
	assert.Equal(t, StatusNoParticipants, status)
}

func TestFetcherHonorsContextCancellation(t *testing.T) {
	lister := &fakeLister{pages: []listPage{
		{groups: []gateway.Group{adminGroup("g1")}},
	}}
	f, _ := newTestFetcher(lister)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.RunPasses(ctx, []PassConfig{{BatchSize: 50, Delay: time.Second, MaxCalls: 4}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, lister.listCalls)
}
