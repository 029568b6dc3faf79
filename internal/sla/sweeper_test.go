package sla

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rayenna-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu        sync.Mutex
	projects  []models.Project
	updates   map[uint]models.StatusIndicator
	listErr   error
	updateErr error
}

func (m *memStore) ListInFlight(ctx context.Context) ([]models.Project, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Project(nil), m.projects...), nil
}

func (m *memStore) UpdateStatusIndicator(ctx context.Context, id uint, ind models.StatusIndicator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.updates == nil {
		m.updates = map[uint]models.StatusIndicator{}
	}
	m.updates[id] = ind
	return nil
}

func (m *memStore) updatesSnapshot() map[uint]models.StatusIndicator {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint]models.StatusIndicator, len(m.updates))
	for k, v := range m.updates {
		out[k] = v
	}
	return out
}

func inStage(id uint, enteredDaysAgo float64, budget int, current models.StatusIndicator) models.Project {
	p := models.Project{StageEnteredAt: daysAgo(enteredDaysAgo), SLABudgetDays: intPtr(budget), StatusIndicator: current}
	p.ID = id
	return p
}

func TestSweepOnce_WritesOnlyChanges(t *testing.T) {
	store := &memStore{projects: []models.Project{
		inStage(1, 1, 7, models.IndicatorGreen),   // unchanged
		inStage(2, 10, 7, models.IndicatorAmber),  // now red
		inStage(3, 11, 14, models.IndicatorGreen), // now amber
	}}
	s := NewSweeper(store, &Engine{Now: func() time.Time { return now }}, time.Minute)

	n, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, map[uint]models.StatusIndicator{
		2: models.IndicatorRed,
		3: models.IndicatorAmber,
	}, store.updates)

	// second pass against the stored values changes nothing
	store.projects[1].StatusIndicator = models.IndicatorRed
	store.projects[2].StatusIndicator = models.IndicatorAmber
	store.updates = nil
	n, err = s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.updates)
}

func TestSweepOnce_PropagatesErrors(t *testing.T) {
	e := &Engine{Now: func() time.Time { return now }}

	_, err := NewSweeper(&memStore{listErr: errors.New("db down")}, e, 0).SweepOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list in-flight projects")

	store := &memStore{
		projects:  []models.Project{inStage(9, 30, 7, models.IndicatorGreen)},
		updateErr: errors.New("locked"),
	}
	_, err = NewSweeper(store, e, 0).SweepOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project 9")
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := &memStore{projects: []models.Project{inStage(1, 10, 7, models.IndicatorGreen)}}
	s := NewSweeper(store, &Engine{Now: func() time.Time { return now }}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(store.updatesSnapshot()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
