package polymarket

// clob.go: Polymarket CLOB API adapter.
//
// FetchMidpoints lanza un request por token con un máximo de maxInFlight en
// vuelo (errgroup.SetLimit). Cada request lleva su propio timeout: un token
// lento o caído no bloquea al resto, simplemente no aparece en el resultado.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"
)

const midpointPath = "/midpoint"

var errNoMidpoint = errors.New("no midpoint")

// FetchMidpoints obtiene el midpoint de cada token_id. Los IDs se deduplican.
// Nunca devuelve error: los tokens fallidos se omiten del mapa.
func (c *Client) FetchMidpoints(ctx context.Context, tokenIDs []string) map[string]float64 {
	ids := dedupe(tokenIDs)
	result := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return result
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(c.maxInFlight)

	for _, id := range ids {
		g.Go(func() error {
			price, err := c.fetchMidpoint(ctx, id)
			if err != nil {
				slog.Debug("clob: midpoint unavailable", "token", shortID(id), "err", err)
				return nil
			}
			mu.Lock()
			result[id] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	slog.Debug("midpoints fetched", "requested", len(ids), "received", len(result))
	return result
}

// fetchMidpoint hace GET /midpoint?token_id= con timeout propio.
func (c *Client) fetchMidpoint(ctx context.Context, tokenID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.priceTimeout)
	defer cancel()

	u := c.clobBase + midpointPath + "?token_id=" + url.QueryEscape(tokenID)
	var resp midpointResponse
	if err := c.get(ctx, c.clobLimiter, u, &resp); err != nil {
		return 0, fmt.Errorf("clob.fetchMidpoint: %w", err)
	}

	mid, ok := resp.value()
	if !ok {
		return 0, errNoMidpoint
	}
	if mid < 0 || mid > 1 {
		return 0, fmt.Errorf("clob.fetchMidpoint: mid %v out of range", mid)
	}
	return mid, nil
}

// dedupe conserva el orden de primera aparición y descarta vacíos.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "…"
}
