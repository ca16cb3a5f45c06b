// Package strava is a minimal client of the Strava v3 athlete activities API.
package strava

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const MaxPageSize = 200

var (
	ErrUnauthorized = errors.New("strava: access token rejected")
	ErrRateLimited  = errors.New("strava: rate limited")
	ErrUpstream     = errors.New("strava: upstream error")
)

type Config struct {
	BaseURL   string
	Timeout   time.Duration
	PageSize  int
	PageDelay time.Duration
	// Attempts is the number of tries per page, including the first.
	Attempts uint
}

type Client struct {
	conf   Config
	client *http.Client
}

func NewClient(conf Config) *Client {
	if conf.PageSize <= 0 || conf.PageSize > MaxPageSize {
		conf.PageSize = MaxPageSize
	}
	if conf.Attempts == 0 {
		conf.Attempts = 3
	}
	if conf.Timeout == 0 {
		conf.Timeout = time.Second * 15
	}
	return &Client{
		conf: conf,
		client: &http.Client{
			Timeout: conf.Timeout,
		},
	}
}

// ListActivities fetches one page (1-based) of the athlete's activities started after `after`.
// A zero `after` lists from the beginning.
func (c *Client) ListActivities(ctx context.Context, token string, after time.Time, page int) ([]*Activity, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(c.conf.PageSize))
	q.Set("page", strconv.Itoa(page))
	if !after.IsZero() {
		q.Set("after", strconv.FormatInt(after.Unix(), 10))
	}
	endpoint := c.conf.BaseURL + "/athlete/activities?" + q.Encode()

	var activities []*Activity
	err := retry.Do(
		func() error {
			var err error
			activities, err = c.fetch(ctx, endpoint, token)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.conf.Attempts),
		retry.Delay(time.Millisecond*500),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().
				Err(err).
				Str("evt.name", "strava.fetch.retry").
				Uint("attempt", n+1).
				Int("page", page).
				Msg("retrying activity page fetch")
		}),
	)
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// ListAllActivities walks pages until an empty or short page, pausing after every
// full page to stay under the upstream rate limit.
func (c *Client) ListAllActivities(ctx context.Context, token string, after time.Time) ([]*Activity, error) {
	all := make([]*Activity, 0)
	for page := 1; ; page++ {
		activities, err := c.ListActivities(ctx, token, after, page)
		if err != nil {
			return nil, errors.Wrapf(err, "list activities page %d", page)
		}
		all = append(all, activities...)
		if len(activities) < c.conf.PageSize {
			return all, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.conf.PageDelay):
		}
	}
}

func (c *Client) fetch(ctx context.Context, endpoint, token string) ([]*Activity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, retry.Unrecoverable(errors.Wrap(ErrUnauthorized, upstreamMessage(body)))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, retry.Unrecoverable(errors.Wrap(ErrRateLimited, upstreamMessage(body)))
	case resp.StatusCode >= 500:
		return nil, errors.Wrapf(ErrUpstream, "status %d: %s", resp.StatusCode, upstreamMessage(body))
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Unrecoverable(errors.Wrapf(ErrUpstream, "status %d: %s", resp.StatusCode, upstreamMessage(body)))
	}

	var activities []*Activity
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, retry.Unrecoverable(errors.Wrap(err, "strava: decode activities"))
	}
	return activities, nil
}

// upstreamMessage extracts Strava's {"message": ...} error text, falling back to the raw body.
func upstreamMessage(body []byte) string {
	if m := gjson.GetBytes(body, "message"); m.Exists() {
		return m.String()
	}
	if len(body) > 256 {
		body = body[:256]
	}
	return string(body)
}
