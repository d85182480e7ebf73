package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrmmllrs/test-app-backend/internal/model"
)

type fakeProctoringStore struct {
	events      []*model.ProctoringEvent
	lastIncTab  bool
	lastIncViol bool
	counters    model.ViolationCounters
	byTest      map[int][]model.ProctoringEvent
	summaries   map[[2]int]*model.EventSummary
}

func (f *fakeProctoringStore) LogEvent(_ context.Context, ev *model.ProctoringEvent, incTab, incViolation bool) (*model.ViolationCounters, error) {
	f.events = append(f.events, ev)
	f.lastIncTab = incTab
	f.lastIncViol = incViolation
	if incTab {
		f.counters.TabSwitchCount++
	}
	if incViolation {
		f.counters.ViolationCount++
	}
	c := f.counters
	return &c, nil
}

func (f *fakeProctoringStore) ListByTest(_ context.Context, testID int) ([]model.ProctoringEvent, error) {
	return f.byTest[testID], nil
}

func (f *fakeProctoringStore) ListByCandidateTest(_ context.Context, candidateID, testID int) ([]model.ProctoringEvent, error) {
	return f.byTest[testID], nil
}

func (f *fakeProctoringStore) Summarize(_ context.Context, candidateID, testID int) (*model.EventSummary, error) {
	if s, ok := f.summaries[[2]int{candidateID, testID}]; ok {
		return s, nil
	}
	return &model.EventSummary{}, nil
}

func newProctoringFixture() (*ProctoringService, *fakeProctoringStore, *fakeNotifier) {
	store := &fakeProctoringStore{byTest: map[int][]model.ProctoringEvent{}, summaries: map[[2]int]*model.EventSummary{}}
	tests := &fakeTestStore{tests: map[int]*model.Test{
		1: {ID: 1, Title: "Go Basics", CreatedBy: 7, EnableProctoring: true, MaxTabSwitches: 3, RequireFullscreen: true},
	}}
	notifier := &fakeNotifier{}
	return NewProctoringService(store, tests, notifier), store, notifier
}

func TestLogEventCounterSelection(t *testing.T) {
	cases := []struct {
		event   string
		incTab  bool
		incViol bool
	}{
		{"tab_switch", true, true},
		{"copy_attempt", false, true},
		{"paste_attempt", false, true},
		{"fullscreen_exit", false, true},
		{"mouse_leave", false, false}, // unknown kinds are logged, never counted
	}

	for _, tc := range cases {
		t.Run(tc.event, func(t *testing.T) {
			svc, store, _ := newProctoringFixture()

			_, err := svc.LogEvent(context.Background(), candidate, &model.LogEventRequest{
				TestID:    1,
				EventType: tc.event,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.incTab, store.lastIncTab)
			assert.Equal(t, tc.incViol, store.lastIncViol)
			require.Len(t, store.events, 1, "every event lands in the log")
		})
	}
}

func TestLogEventIdentityFromPrincipal(t *testing.T) {
	svc, store, _ := newProctoringFixture()

	_, err := svc.LogEvent(context.Background(), candidate, &model.LogEventRequest{
		TestID:    1,
		EventType: "tab_switch",
	})
	require.NoError(t, err)
	assert.Equal(t, candidate.ID, store.events[0].CandidateID)
}

func TestLogEventPublishesMonitorUpdate(t *testing.T) {
	svc, _, notifier := newProctoringFixture()

	counters, err := svc.LogEvent(context.Background(), candidate, &model.LogEventRequest{
		TestID:    1,
		EventType: "tab_switch",
	})
	require.NoError(t, err)

	require.Len(t, notifier.updates, 1)
	update := notifier.updates[0]
	assert.Equal(t, 1, update.TestID)
	assert.Equal(t, model.EventTabSwitch, update.EventType)
	assert.Equal(t, *counters, update.Counters)
}

func TestLogEventUnknownTest(t *testing.T) {
	svc, _, _ := newProctoringFixture()

	_, err := svc.LogEvent(context.Background(), candidate, &model.LogEventRequest{
		TestID:    42,
		EventType: "tab_switch",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettingsExposesPolicyOnly(t *testing.T) {
	svc, _, _ := newProctoringFixture()

	settings, err := svc.Settings(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, settings.EnableProctoring)
	assert.Equal(t, 3, settings.MaxTabSwitches)
	assert.True(t, settings.RequireFullscreen)
}

func TestReviewEndpointsRequireOwnership(t *testing.T) {
	svc, _, _ := newProctoringFixture()
	outsider := Principal{ID: 50, Email: "x@example.com", Role: model.RoleEmployer}

	_, err := svc.ListTestEvents(context.Background(), outsider, 1)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Report(context.Background(), outsider, 3, 1)
	assert.ErrorIs(t, err, ErrForbidden)

	// The owner and an admin both pass.
	_, err = svc.ListTestEvents(context.Background(), employer, 1)
	assert.NoError(t, err)

	admin := Principal{ID: 2, Email: "root@example.com", Role: model.RoleAdmin}
	_, err = svc.Report(context.Background(), admin, 3, 1)
	assert.NoError(t, err)
}
