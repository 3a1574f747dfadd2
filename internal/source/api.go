package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"ralsponsors/internal/config"
	"ralsponsors/internal/logger"
	"ralsponsors/internal/models"
	"ralsponsors/pkg/utils"
)

// API errors. Each aborts pagination; records from earlier pages are still returned.
var (
	ErrRequestFailed        = errors.New("api request failed")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrDecodeResponse       = errors.New("failed to decode api response")
	ErrAPIError             = errors.New("api returned error")
)

const (
	// apiSuccessCode is the "ec" value of a successful afdian response.
	apiSuccessCode = 200

	// maxResponseSize limits one page body.
	maxResponseSize = 10 * 1024 * 1024
)

// APIClient pages through the afdian query-sponsor endpoint.
type APIClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
	now        func() time.Time
	endpoint   string
	userID     string
	token      string
}

type apiRequest struct {
	UserID string `json:"user_id"`
	Params string `json:"params"`
	Sign   string `json:"sign"`
	TS     int64  `json:"ts"`
}

type apiResponse struct {
	EM   string `json:"em"`
	Data struct {
		List      []apiSponsor `json:"list"`
		TotalPage int          `json:"total_page"`
	} `json:"data"`
	EC int `json:"ec"`
}

type apiSponsor struct {
	User struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	} `json:"user"`
	CurrentPlan struct {
		Name string `json:"name"`
	} `json:"current_plan"`
	FirstPayTime flexTime   `json:"first_pay_time"`
	AllSumAmount flexAmount `json:"all_sum_amount"`
}

// NewAPIClient creates a client from the afdian settings.
func NewAPIClient(cfg config.AfdianConfig, log *logger.Logger) *APIClient {
	limit := rate.Inf
	if interval := cfg.GetPageInterval(); interval > 0 {
		limit = rate.Every(interval)
	}

	return &APIClient{
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		limiter:  rate.NewLimiter(limit, 1),
		logger:   log,
		now:      time.Now,
		endpoint: cfg.APIURL,
		userID:   cfg.UserID,
		token:    cfg.Token,
	}
}

// SetClock replaces the timestamp source used for signing.
func (c *APIClient) SetClock(now func() time.Time) {
	c.now = now
}

// FetchAll requests pages until one comes back empty or the reported page count is reached.
// On failure it returns every record collected so far together with the error.
func (c *APIClient) FetchAll(ctx context.Context) ([]models.RawContribution, error) {
	var all []models.RawContribution

	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return all, fmt.Errorf("%w: page %d: %w", ErrRequestFailed, page, err)
		}

		resp, err := c.fetchPage(ctx, page)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}

		if len(resp.Data.List) == 0 {
			c.logger.Debug("Empty page, stopping", "page", page)
			break
		}

		for _, s := range resp.Data.List {
			rec, ok := s.toContribution()
			if !ok {
				c.logger.Warn("Skipping sponsor without user_id", "page", page)
				continue
			}

			all = append(all, rec)
		}

		c.logger.Info("Fetched page", "page", page, "sponsors", len(resp.Data.List), "total_page", resp.Data.TotalPage)

		if page >= resp.Data.TotalPage {
			break
		}
	}

	return all, nil
}

func (c *APIClient) fetchPage(ctx context.Context, page int) (*apiResponse, error) {
	params, err := pageParams(page)
	if err != nil {
		return nil, err
	}

	ts := c.now().Unix()

	body, err := json.Marshal(apiRequest{
		UserID: c.userID,
		Params: params,
		TS:     ts,
		Sign:   Sign(c.token, c.userID, params, ts),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	req.Header = utils.NewHTTPHelper().BuildHeaders(map[string]string{
		"Content-Type": "application/json",
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	var out apiResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeResponse, err)
	}

	if out.EC != apiSuccessCode {
		msg := out.EM
		if msg == "" {
			msg = "unknown error"
		}

		return nil, fmt.Errorf("%w: ec=%d: %s", ErrAPIError, out.EC, msg)
	}

	return &out, nil
}

func (s apiSponsor) toContribution() (models.RawContribution, bool) {
	id := s.User.UserID
	if id == "" {
		return models.RawContribution{}, false
	}

	name := s.User.Name
	if name == "" {
		name = "匿名_" + utils.NewStringHelper().TruncateRunes(id, 5)
	}

	return models.RawContribution{
		ID:        id,
		Name:      name,
		Plan:      s.CurrentPlan.Name,
		Timestamp: string(s.FirstPayTime),
		SourceURL: models.ProfileURL(id),
		AvatarURL: s.User.Avatar,
		Amount:    float64(s.AllSumAmount),
	}, true
}
