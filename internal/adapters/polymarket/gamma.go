package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/nbaedge/internal/domain"
)

const gammaEventsPath = "/events"

// FetchEvents devuelve los eventos activos de la serie configurada, ordenados
// por hora de inicio. No filtra por fecha: eso lo decide el scanner con la
// fecha del mercado.
func (c *Client) FetchEvents(ctx context.Context) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, c.eventsTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("series_id", strconv.Itoa(c.query.SeriesID))
	q.Set("tag_id", strconv.Itoa(c.query.TagID))
	q.Set("active", "true")
	q.Set("closed", "false")
	q.Set("limit", strconv.Itoa(c.query.Limit))
	q.Set("order", "startTime")
	q.Set("ascending", "true")

	var resp gammaEventsResponse
	if err := c.get(ctx, c.gammaLimiter, c.gammaBase+gammaEventsPath+"?"+q.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("gamma.FetchEvents: %w", err)
	}

	events := mapEvents(resp)
	slog.Debug("gamma events fetched",
		"events", len(events),
		"series", c.query.SeriesID,
	)
	return events, nil
}
