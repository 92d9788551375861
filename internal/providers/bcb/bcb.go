package bcb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
	"github.com/MariaDeNazare/etl-macropulse-br/internal/transform"
)

const (
	defaultBaseURL         = "https://api.bcb.gov.br/"
	defaultSeriesPath      = "dados/serie/bcdata.sgs.{id}/dados"
	defaultRateLimitPerSec = 2
	defaultRateLimitBurst  = 2
	defaultTimeoutSeconds  = 30
	defaultMaxRetries      = 3
	defaultUserAgent       = "macropulse/0.1"
	defaultWindowYears     = 10
	queryDateLayout        = "02/01/2006"
)

var ErrNoRecords = errors.New("bcb: no records found")

type Config struct {
	BaseURL         string
	SeriesPath      string
	RateLimitPerSec float64
	RateLimitBurst  int
	Timeout         time.Duration
	MaxRetries      int
	UserAgent       string
	// WindowYears caps the date range of a single request; SGS rejects long daily ranges.
	WindowYears int
}

type Provider struct {
	config  Config
	client  *resty.Client
	limiter *rate.Limiter
}

type sgsRow struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

func New(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/"
	if strings.TrimSpace(cfg.SeriesPath) == "" {
		cfg.SeriesPath = defaultSeriesPath
	}
	if cfg.RateLimitPerSec <= 0 {
		cfg.RateLimitPerSec = defaultRateLimitPerSec
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaultRateLimitBurst
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeoutSeconds * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.WindowYears <= 0 {
		cfg.WindowYears = defaultWindowYears
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil || resp == nil {
				return true
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
		})

	return &Provider{
		config:  cfg,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst),
	}, nil
}

func (p *Provider) Name() string {
	return "bcb"
}

// FetchSeries returns the raw SGS observations of seriesID between from and to, inclusive.
// A window that has no data contributes nothing; ErrNoRecords is returned only when the
// whole range is empty on the server side.
func (p *Provider) FetchSeries(ctx context.Context, seriesID int64, from, to time.Time) ([]model.SeriesPoint, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("bcb: end date %s is before start date %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	points := make([]model.SeriesPoint, 0)
	notFound := 0
	windows := splitWindows(from, to, p.config.WindowYears)
	for _, window := range windows {
		fetched, err := p.fetchWindow(ctx, seriesID, window[0], window[1])
		if err != nil {
			if errors.Is(err, ErrNoRecords) {
				notFound++
				continue
			}
			return nil, err
		}
		points = append(points, fetched...)
	}
	if notFound == len(windows) {
		return nil, ErrNoRecords
	}
	return points, nil
}

func (p *Provider) fetchWindow(ctx context.Context, seriesID int64, from, to time.Time) ([]model.SeriesPoint, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	path := strings.ReplaceAll(p.config.SeriesPath, "{id}", strconv.FormatInt(seriesID, 10))
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"formato":     "json",
			"dataInicial": from.Format(queryDateLayout),
			"dataFinal":   to.Format(queryDateLayout),
		}).
		Get(p.config.BaseURL + path)
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrNoRecords
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("bcb: request failed (%s): %s", resp.Status(), strings.TrimSpace(string(body)))
	}

	return parseSeries(body, seriesID)
}

func parseSeries(body []byte, seriesID int64) ([]model.SeriesPoint, error) {
	var rows []sgsRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("bcb: decode series %d: %w", seriesID, err)
	}

	points := make([]model.SeriesPoint, 0, len(rows))
	for _, row := range rows {
		point := model.SeriesPoint{SeriesID: seriesID, Value: math.NaN()}
		if date, err := time.Parse(queryDateLayout, strings.TrimSpace(row.Data)); err == nil {
			point.Date = date
		}
		if value, ok := transform.ParseLocaleFloat(row.Valor); ok {
			point.Value = value
		}
		points = append(points, point)
	}
	return points, nil
}

func splitWindows(from, to time.Time, years int) [][2]time.Time {
	windows := make([][2]time.Time, 0, 1)
	start := from
	for !start.After(to) {
		end := start.AddDate(years, 0, -1)
		if end.After(to) {
			end = to
		}
		windows = append(windows, [2]time.Time{start, end})
		start = end.AddDate(0, 0, 1)
	}
	return windows
}
