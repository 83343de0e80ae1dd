package polymarket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/nbaedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/nbaedge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(clobSrv, gammaSrv *httptest.Server, opts ...polymarket.Option) *polymarket.Client {
	clobURL := ""
	gammaURL := ""
	if clobSrv != nil {
		clobURL = clobSrv.URL
	}
	if gammaSrv != nil {
		gammaURL = gammaSrv.URL
	}
	return polymarket.NewClient(clobURL, gammaURL, opts...)
}

func TestFetchEvents_Success(t *testing.T) {
	data, err := os.ReadFile("../../../testdata/fixtures/gamma_events.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "10345", q.Get("series_id"))
		assert.Equal(t, "100639", q.Get("tag_id"))
		assert.Equal(t, "true", q.Get("active"))
		assert.Equal(t, "false", q.Get("closed"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "startTime", q.Get("order"))
		assert.Equal(t, "true", q.Get("ascending"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer srv.Close()

	client := newTestClient(nil, srv)
	events, err := client.FetchEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	ev := events[0]
	assert.Equal(t, "30211", ev.ID)
	assert.Equal(t, "Celtics vs. Lakers", ev.Title)
	assert.Equal(t, "2026-01-14", ev.EventDate)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 30, 0, 0, time.UTC), ev.StartTime)
	assert.InDelta(t, 154322.75, ev.Volume, 0.001)
	require.Len(t, ev.Contracts, 5)

	ml := ev.Contracts[0]
	assert.InDelta(t, 98211.4, ml.Volume, 0.001)
	assert.Equal(t, []string{"tok_celtics", "tok_lakers"}, ml.TokenIDs)
	assert.Equal(t, []string{"Celtics", "Lakers"}, ml.Labels)

	// arrays ya decodificados también se aceptan
	assert.Equal(t, []string{"tok_over", "tok_under"}, ev.Contracts[2].TokenIDs)
	// JSON mal formado degrada a vacío
	assert.Empty(t, ev.Contracts[4].TokenIDs)

	assert.Equal(t, 0.0, events[1].Contracts[0].Volume)
	assert.InDelta(t, 4100, events[1].Volume, 0.001)
}

func TestFetchEvents_FeedsStructureBuilder(t *testing.T) {
	data, err := os.ReadFile("../../../testdata/fixtures/gamma_events.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	events, err := newTestClient(nil, srv).FetchEvents(context.Background())
	require.NoError(t, err)

	structure := domain.BuildStructure(domain.FilterByDate(events, "2026-01-14"))
	require.Len(t, structure, 1)
	m := structure[0].Markets
	require.Len(t, m, 3)
	assert.Equal(t, "Celtics vs. Lakers", m[domain.CategoryMoneyline].Question)
	assert.Equal(t, "Spread: Lakers (-3.5)", m[domain.CategorySpread].Question)
	assert.Equal(t, "Celtics vs. Lakers: O/U 224.5", m[domain.CategoryTotal].Question)
}

func TestFetchEvents_CustomQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "999", r.URL.Query().Get("series_id"))
		assert.Equal(t, "100639", r.URL.Query().Get("tag_id"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := newTestClient(nil, srv, polymarket.WithEventQuery(polymarket.EventQuery{SeriesID: 999, Limit: 10}))
	events, err := client.FetchEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFetchEvents_ServerErrorRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(nil, srv, polymarket.WithMaxRetries(1))
	_, err := client.FetchEvents(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gamma.FetchEvents")
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchEvents_ClientErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad series", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(nil, srv).FetchEvents(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client error 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchEvents_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := newTestClient(nil, srv,
		polymarket.WithMaxRetries(0),
		polymarket.WithTimeouts(50*time.Millisecond, 0),
	)
	start := time.Now()
	_, err := client.FetchEvents(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
