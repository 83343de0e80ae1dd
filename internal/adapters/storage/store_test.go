package storage_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/adapters/storage"
	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/alejandrodnm/nbaedge/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 14, 14, 0, 0, 0, time.UTC)

type storeFactory func(t *testing.T) ports.StateStore

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"file": func(t *testing.T) ports.StateStore {
			s, err := storage.NewFileStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) ports.StateStore {
			s, err := storage.NewSQLiteStore(":memory:")
			require.NoError(t, err)
			return s
		},
	}
}

func forEachBackend(t *testing.T, fn func(t *testing.T, s ports.StateStore)) {
	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()
			fn(t, s)
		})
	}
}

func makePosition(id, token string) domain.Position {
	opp := domain.Opportunity{
		EventTitle:  "Lakers vs. Celtics",
		Team:        "Lakers",
		MarketPrice: 30,
		FairValue:   52.25,
		Edge:        -22.25,
		Signal:      domain.SignalBuy,
		StartTime:   t0.Add(10 * time.Hour),
		TokenID:     token,
	}
	return domain.NewPosition(id, opp, 1.0, 0.42, t0)
}

func TestStore_EmptyDefaults(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s ports.StateStore) {
		ctx := context.Background()

		positions, err := s.LoadPositions(ctx)
		require.NoError(t, err)
		assert.NotNil(t, positions)
		assert.Empty(t, positions)

		log, err := s.LoadScanLog(ctx)
		require.NoError(t, err)
		assert.Empty(t, log)

		state, err := s.LoadState(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.SchedulerState{}, state)
	})
}

func TestStore_PositionsRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s ports.StateStore) {
		ctx := context.Background()
		open := makePosition("p1", "tokA")
		closed := makePosition("p2", "tokB")
		closed.ApplyPrice(0.45, t0.Add(time.Hour))
		require.False(t, closed.IsOpen())

		err := s.UpdatePositions(ctx, func(ps []domain.Position) ([]domain.Position, error) {
			return append(ps, open, closed), nil
		})
		require.NoError(t, err)

		got, err := s.LoadPositions(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, open, got[0])
		assert.Equal(t, closed, got[1])
	})
}

func TestStore_UpdatePositionsErrorWritesNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s ports.StateStore) {
		ctx := context.Background()
		boom := errors.New("boom")

		err := s.UpdatePositions(ctx, func(ps []domain.Position) ([]domain.Position, error) {
			return append(ps, makePosition("p1", "tokA")), boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.LoadPositions(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStore_ScanLogBounded(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s ports.StateStore) {
		ctx := context.Background()
		for i := 0; i < domain.MaxScanLog+5; i++ {
			entry := domain.ScanLogEntry{At: t0.Add(time.Duration(i) * time.Minute), Events: i}
			if i == domain.MaxScanLog+4 {
				entry.Opportunities = 1
				entry.Results = []domain.Opportunity{{Team: "Lakers", Edge: -22.25, Signal: domain.SignalBuy, TokenID: "tokA"}}
			}
			require.NoError(t, s.AppendScanLog(ctx, entry))
		}

		log, err := s.LoadScanLog(ctx)
		require.NoError(t, err)
		require.Len(t, log, domain.MaxScanLog)
		assert.Equal(t, 5, log[0].Events)
		assert.Equal(t, t0.Add(5*time.Minute), log[0].At)

		last := log[len(log)-1]
		require.Len(t, last.Results, 1)
		assert.Equal(t, "Lakers", last.Results[0].Team)
		assert.Equal(t, domain.SignalBuy, last.Results[0].Signal)
	})
}

func TestStore_StateUpdate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s ports.StateStore) {
		ctx := context.Background()

		require.NoError(t, s.UpdateState(ctx, func(st *domain.SchedulerState) error {
			st.ManualTriggered = true
			return nil
		}))
		state, err := s.LoadState(ctx)
		require.NoError(t, err)
		assert.True(t, state.ManualTriggered)
		assert.Nil(t, state.LastScan)

		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		require.NoError(t, s.UpdateState(ctx, func(st *domain.SchedulerState) error {
			st.MarkScanned(t0, loc)
			return nil
		}))

		state, err = s.LoadState(ctx)
		require.NoError(t, err)
		assert.False(t, state.ManualTriggered)
		require.NotNil(t, state.LastScan)
		assert.Equal(t, t0, *state.LastScan)
		assert.Equal(t, "2026-01-14", state.LastScanDate)
	})
}

func TestStore_ConcurrentUpdatesNoLostWrites(t *testing.T) {
	forEachBackend(t, func(t *testing.T, s ports.StateStore) {
		ctx := context.Background()
		const writers = 20

		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.UpdatePositions(ctx, func(ps []domain.Position) ([]domain.Position, error) {
					id := fmt.Sprintf("p%02d", i)
					return append(ps, makePosition(id, "tok"+id)), nil
				})
				assert.NoError(t, err)
			}()
		}
		// lectores concurrentes nunca ven un documento roto
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.LoadPositions(ctx)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.LoadPositions(ctx)
		require.NoError(t, err)
		assert.Len(t, got, writers)
	})
}

func TestFileStore_WritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.UpdatePositions(context.Background(), func(ps []domain.Position) ([]domain.Position, error) {
		return append(ps, makePosition("p1", "tokA")), nil
	}))

	data, err := os.ReadFile(filepath.Join(dir, storage.PositionsFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"token_id": "tokA"`)
	assert.Contains(t, string(data), `"status": "OPEN"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileStore_CorruptDocumentIsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.StateFile), []byte("{not json"), 0o644))

	s, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	_, err = s.LoadState(context.Background())
	assert.Error(t, err)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nbaedge.db")
	s, err := storage.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.UpdatePositions(context.Background(), func(ps []domain.Position) ([]domain.Position, error) {
		return append(ps, makePosition("p1", "tokA")), nil
	}))
	require.NoError(t, s.Close())

	s, err = storage.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.LoadPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}
