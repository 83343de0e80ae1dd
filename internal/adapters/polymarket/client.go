package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultCLOBBase  = "https://clob.polymarket.com"
	defaultGammaBase = "https://gamma-api.polymarket.com"

	// Rate limits al 60% de los límites reales documentados.
	// Gamma /events: 300/10s → 180/10s → 18/s
	gammaRatePerSec = 18
	// CLOB general (midpoint, etc.): 9000/10s → 5400/10s → 540/s
	generalRatePerSec = 540

	defaultMaxRetries    = 3
	baseRetryWait        = 500 * time.Millisecond
	defaultEventsTimeout = 15 * time.Second
	defaultPriceTimeout  = 8 * time.Second
	defaultMaxInFlight   = 20
)

// EventQuery son los filtros de GET /events para la serie NBA.
type EventQuery struct {
	SeriesID int
	TagID    int
	Limit    int
}

// DefaultEventQuery es la serie NBA con el tag de partidos.
var DefaultEventQuery = EventQuery{SeriesID: 10345, TagID: 100639, Limit: 50}

// Client es el HTTP client de Polymarket con rate limiting y retries.
type Client struct {
	http         *http.Client
	clobBase     string
	gammaBase    string
	clobLimiter  *rate.Limiter
	gammaLimiter *rate.Limiter

	query         EventQuery
	maxRetries    int
	eventsTimeout time.Duration
	priceTimeout  time.Duration
	maxInFlight   int
}

// Option configura un Client.
type Option func(*Client)

// WithEventQuery cambia los filtros de la serie de eventos.
func WithEventQuery(q EventQuery) Option {
	return func(c *Client) {
		if q.SeriesID > 0 {
			c.query.SeriesID = q.SeriesID
		}
		if q.TagID > 0 {
			c.query.TagID = q.TagID
		}
		if q.Limit > 0 {
			c.query.Limit = q.Limit
		}
	}
}

// WithMaxRetries fija el número de reintentos por request. 0 desactiva los reintentos.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithTimeouts fija los timeouts del listado de eventos y de cada midpoint.
func WithTimeouts(events, price time.Duration) Option {
	return func(c *Client) {
		if events > 0 {
			c.eventsTimeout = events
		}
		if price > 0 {
			c.priceTimeout = price
		}
	}
}

// WithMaxInFlight limita los requests de midpoint concurrentes.
func WithMaxInFlight(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxInFlight = n
		}
	}
}

// NewClient crea un Client con los base URLs dados.
// Si clobBase o gammaBase están vacíos, usa los URLs de producción.
func NewClient(clobBase, gammaBase string, opts ...Option) *Client {
	if clobBase == "" {
		clobBase = defaultCLOBBase
	}
	if gammaBase == "" {
		gammaBase = defaultGammaBase
	}
	c := &Client{
		// Los timeouts por request se aplican con context; este es el techo duro.
		http:          &http.Client{Timeout: 30 * time.Second},
		clobBase:      clobBase,
		gammaBase:     gammaBase,
		clobLimiter:   rate.NewLimiter(generalRatePerSec, 50),
		gammaLimiter:  rate.NewLimiter(gammaRatePerSec, 10),
		query:         DefaultEventQuery,
		maxRetries:    defaultMaxRetries,
		eventsTimeout: defaultEventsTimeout,
		priceTimeout:  defaultPriceTimeout,
		maxInFlight:   defaultMaxInFlight,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get hace un GET con rate limiting y retries.
func (c *Client) get(ctx context.Context, limiter *rate.Limiter, url string, out any) error {
	return c.doWithRetry(ctx, limiter, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return c.http.Do(req)
	}, out)
}

// doWithRetry ejecuta la función con backoff exponencial.
// Reintenta errores de red, 429 y 5xx. Un 4xx se devuelve sin reintentar.
func (c *Client) doWithRetry(ctx context.Context, limiter *rate.Limiter, fn func() (*http.Response, error), out any) error {
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == c.maxRetries || ctx.Err() != nil {
				return fmt.Errorf("request failed after %d retries: %w", attempt, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by API", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == c.maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, c.maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", c.maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
