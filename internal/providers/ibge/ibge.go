package ibge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MariaDeNazare/etl-macropulse-br/internal/model"
)

const (
	defaultBaseURL        = "https://servicodados.ibge.gov.br/"
	defaultStatesPath     = "api/v1/localidades/estados"
	defaultTimeoutSeconds = 30
	defaultUserAgent      = "macropulse/0.1"
)

type Config struct {
	BaseURL    string
	StatesPath string
	Timeout    time.Duration
	UserAgent  string
}

type Provider struct {
	config Config
	client *resty.Client
}

type state struct {
	ID     int    `json:"id"`
	Sigla  string `json:"sigla"`
	Nome   string `json:"nome"`
	Regiao struct {
		Nome string `json:"nome"`
	} `json:"regiao"`
}

func New(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/"
	if strings.TrimSpace(cfg.StatesPath) == "" {
		cfg.StatesPath = defaultStatesPath
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeoutSeconds * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)
	return &Provider{config: cfg, client: client}, nil
}

func (p *Provider) Name() string {
	return "ibge"
}

// ListRegions returns the UF dimension ordered by sigla.
func (p *Provider) ListRegions(ctx context.Context) ([]model.Region, error) {
	resp, err := p.client.R().SetContext(ctx).Get(p.config.BaseURL + p.config.StatesPath)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("ibge: request failed (%s): %s", resp.Status(), strings.TrimSpace(string(resp.Body())))
	}

	var states []state
	if err := json.Unmarshal(resp.Body(), &states); err != nil {
		return nil, fmt.Errorf("ibge: decode states: %w", err)
	}

	regions := make([]model.Region, 0, len(states))
	for _, entry := range states {
		sigla := strings.ToUpper(strings.TrimSpace(entry.Sigla))
		if sigla == "" {
			continue
		}
		regions = append(regions, model.Region{
			ID:         entry.ID,
			Sigla:      sigla,
			Nome:       strings.TrimSpace(entry.Nome),
			RegiaoNome: strings.TrimSpace(entry.Regiao.Nome),
		})
	}
	if len(regions) == 0 {
		return nil, errors.New("ibge: no states parsed")
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Sigla < regions[j].Sigla
	})
	return regions, nil
}
