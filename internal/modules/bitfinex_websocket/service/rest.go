package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"paper_bot/internal/metrics"
	"paper_bot/internal/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// GetCandles — REST-прогрев: последние limit минутных свечей символа.
// Bitfinex отдаёт newest-first, поэтому ответ идёт через тот же путь
// нормализации, что и WS-снапшоты. Лимитер держит 1 rps, чтобы не
// ловить 429 при длинном списке символов.
func (c *Client) GetCandles(ctx context.Context, symbol string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	if err := c.restLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/candles/trade:1m:t%s/hist?limit=%d",
		c.cfg.RESTURL, url.PathEscape(symbol), limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "bitfinex candles %s", symbol)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}

	var rows [][]float64
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, errors.Wrapf(err, "decode candles %s", symbol)
	}

	candles, dropped := NormalizeCandles(rows, true)
	if dropped > 0 {
		metrics.DroppedCandlesTotal.WithLabelValues("no_timestamp").Add(float64(dropped))
		c.log.Warn("[REST] dropped candles without timestamp", zap.String("symbol", symbol), zap.Int("dropped", dropped))
	}
	return candles, nil
}
