package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	xhttp "WalkSim/pkg/http"
	applogger "WalkSim/pkg/logger"
	"WalkSim/pkg/util"
)

const defaultYahooURL = "https://query1.finance.yahoo.com"

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooProvider fetches daily bars from the Yahoo Finance chart API.
type YahooProvider struct {
	client  *xhttp.Client
	baseURL string
	now     func() time.Time
	l       *applogger.Logger
}

func NewYahooProvider(client *xhttp.Client, baseURL string) *YahooProvider {
	if baseURL == "" {
		baseURL = defaultYahooURL
	}
	return &YahooProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
		l:       applogger.Nop(),
	}
}

func (p *YahooProvider) SetLogger(l *applogger.Logger) {
	if l != nil {
		p.l = l
	}
}

// GetBars requests a calendar span wide enough for lookback trading days and
// returns the most recent lookback bars. Rows with any null field are skipped.
func (p *YahooProvider) GetBars(ctx context.Context, symbol string, lookback int) ([]models.Bar, error) {
	symbol = util.NormalizeSymbol(symbol)
	end := p.now().UTC()
	start := end.AddDate(0, 0, -util.CalendarLookback(lookback))

	began := time.Now()
	var resp chartResponse
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		URL: p.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol),
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"period1":  {strconv.FormatInt(start.Unix(), 10)},
			"period2":  {strconv.FormatInt(end.Unix(), 10)},
			"events":   {"history"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: empty result", symbol)
	}

	res := resp.Chart.Result[0]
	q := res.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		o, h, lo, c, v := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i), at(q.Volume, i)
		if o == nil || h == nil || lo == nil || c == nil || v == nil {
			continue
		}
		bars = append(bars, models.Bar{
			Symbol: symbol,
			Date:   time.Unix(ts, 0),
			Open:   *o,
			High:   *h,
			Low:    *lo,
			Close:  *c,
			Volume: *v,
		})
	}
	bars = models.NormalizeBars(symbol, bars)
	if len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}
	p.l.Debug("yahoo bars fetched",
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(bars)),
		applogger.Duration("duration_ms", time.Since(began)))
	return bars, nil
}

func at(xs []*float64, i int) *float64 {
	if i >= len(xs) {
		return nil
	}
	return xs[i]
}

var _ domrepo.BarProvider = (*YahooProvider)(nil)
