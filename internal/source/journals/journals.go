package journals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/iurnickita/merchantsync/internal/auth"
	"github.com/iurnickita/merchantsync/internal/logger"
	"github.com/iurnickita/merchantsync/internal/model"
	"github.com/iurnickita/merchantsync/internal/source"
	"github.com/iurnickita/merchantsync/internal/source/config"
)

const (
	DefaultURL      = "https://api.gobiz.co.id/journals/search"
	defaultPageSize = 100
	defaultMaxPages = 50
	// формат Date.toISOString()
	isoLayout = "2006-01-02T15:04:05.000Z"
)

// JSON запрос поиска по журналу
type searchRequest struct {
	From  int            `json:"from"`
	Size  int            `json:"size"`
	Query searchQuery    `json:"query"`
	Sort  []searchSortBy `json:"sort"`
}

type searchQuery struct {
	Bool struct {
		Must []searchRange `json:"must"`
	} `json:"bool"`
}

type searchRange struct {
	Range struct {
		Time timeBounds `json:"time"`
	} `json:"range"`
}

type timeBounds struct {
	Gte string `json:"gte"`
	Lte string `json:"lte"`
}

type searchSortBy struct {
	Time struct {
		Order string `json:"order"`
	} `json:"time"`
}

type adapter struct {
	cfg     config.Config
	session auth.Session
	client  *resty.Client
	now     func() time.Time
	zaplog  *zap.Logger
}

func NewAdapter(cfg config.Config, zaplog *zap.Logger) source.Adapter {
	if cfg.JournalsURL == "" {
		cfg.JournalsURL = DefaultURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	return &adapter{
		cfg:     cfg,
		session: auth.Session{AccessToken: cfg.AccessToken, Cookie: cfg.Cookie},
		client:  resty.New().OnAfterResponse(logger.RestyLogHook(zaplog)),
		now:     time.Now,
		zaplog:  zaplog,
	}
}

func (a *adapter) FetchRawRecords(ctx context.Context, kind model.SourceKind, dr model.DateRange) ([]model.RawRecord, error) {
	if kind != model.SourceKindAPI {
		return nil, fmt.Errorf("%w: journals adapter serves %q, got %q", source.ErrUnsupportedKind, model.SourceKindAPI, kind)
	}
	if err := a.session.Validate(a.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrAuth, err)
	}

	bounds := timeBounds{
		Gte: dr.Start().UTC().Format(isoLayout),
		Lte: dr.End().UTC().Format(isoLayout),
	}

	var records []model.RawRecord
	for page := 0; page < a.cfg.MaxPages; page++ {
		hits, err := a.searchPage(ctx, page*a.cfg.PageSize, bounds)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			records = append(records, model.RawRecord{Kind: model.SourceKindAPI, Data: hit})
		}
		// последняя страница
		if len(hits) < a.cfg.PageSize {
			return records, nil
		}
	}

	a.zaplog.Warn("journals page limit reached",
		zap.Int("max_pages", a.cfg.MaxPages),
		zap.Int("records", len(records)),
	)
	return records, nil
}

func (a *adapter) searchPage(ctx context.Context, from int, bounds timeBounds) ([]map[string]any, error) {
	body := searchRequest{From: from, Size: a.cfg.PageSize}
	var must searchRange
	must.Range.Time = bounds
	body.Query.Bool.Must = []searchRange{must}
	var sortBy searchSortBy
	sortBy.Time.Order = "desc"
	body.Sort = []searchSortBy{sortBy}

	setreq := a.session.Apply(a.client.R().SetContext(ctx))
	setreq.Method = http.MethodPost
	setreq.URL = a.cfg.JournalsURL
	setreq.SetHeader("Content-Type", "application/json")
	setreq.SetBody(body)
	setresp, err := setreq.Send()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrTransport, err)
	}

	switch setresp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: journals status %d", source.ErrAuth, setresp.StatusCode())
	default:
		return nil, fmt.Errorf("%w: journals status %d", source.ErrTransport, setresp.StatusCode())
	}

	var answer map[string]any
	dec := json.NewDecoder(bytes.NewReader(setresp.Body()))
	dec.UseNumber()
	if err := dec.Decode(&answer); err != nil {
		return nil, fmt.Errorf("%w: journals response: %w", source.ErrTransport, err)
	}
	return hitsOf(answer), nil
}

// hitsOf understands both a flat "hits" array and the nested {"hits":{"hits":[...]}} form.
func hitsOf(answer map[string]any) []map[string]any {
	raw := answer["hits"]
	if nested, ok := raw.(map[string]any); ok {
		raw = nested["hits"]
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	hits := make([]map[string]any, 0, len(list))
	for _, item := range list {
		hit, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if src, ok := hit["_source"].(map[string]any); ok {
			hit = src
		}
		hits = append(hits, hit)
	}
	return hits
}
