// Package royale provides a rate-limited client for the external game API.
package royale

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the production game API endpoint.
	DefaultBaseURL = "https://api.clashroyale.com/v1"

	// DefaultRequestsPerSecond is the global request ceiling shared by all
	// callers of one client.
	DefaultRequestsPerSecond = 20

	// DefaultBurst allows a single immediate dispatch per refill.
	DefaultBurst = 1

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries bounds backoff attempts after a throttled response.
	DefaultMaxRetries = 3

	// DefaultBackoffBase is the first backoff delay; it doubles per attempt.
	DefaultBackoffBase = 1 * time.Second

	maxBackoff = 16 * time.Second
)

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL           string
	Token             string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	MaxRetries        int
	BackoffBase       time.Duration

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client

	// Sleep overrides backoff sleeping, mainly for tests. Defaults to
	// time.Sleep.
	Sleep func(time.Duration)
}

// DefaultClientOptions returns production defaults. The token must still be
// supplied by the caller.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseURL:           DefaultBaseURL,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Burst:             DefaultBurst,
		Timeout:           DefaultTimeout,
		MaxRetries:        DefaultMaxRetries,
		BackoffBase:       DefaultBackoffBase,
	}
}

// Client is a game API client. One rate limiter is shared by every caller,
// so concurrent workers collectively respect the request ceiling.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	token       string
	maxRetries  int
	backoffBase time.Duration
	sleep       func(time.Duration)
}

// NewClient creates a game API client from options, filling in defaults for
// zero values.
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if opts.Burst <= 0 {
		opts.Burst = DefaultBurst
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	return &Client{
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		baseURL:     opts.BaseURL,
		token:       opts.Token,
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		sleep:       sleep,
	}
}

// GetBattleLog retrieves the recent battles for a player.
func (c *Client) GetBattleLog(ctx context.Context, playerTag string) ([]Battle, error) {
	endpoint := fmt.Sprintf("%s/players/%s/battlelog", c.baseURL, url.PathEscape(playerTag))

	var battles []Battle
	if err := c.doRequest(ctx, endpoint, &battles); err != nil {
		return nil, fmt.Errorf("get battle log for %s: %w", playerTag, err)
	}

	return battles, nil
}

// GetTopPlayers retrieves the top n players from a location leaderboard.
// Use location "global" for the worldwide board.
func (c *Client) GetTopPlayers(ctx context.Context, location string, n int) ([]RankedPlayer, error) {
	endpoint := fmt.Sprintf("%s/locations/%s/rankings/players?limit=%d",
		c.baseURL, url.PathEscape(location), n)

	var list itemList[RankedPlayer]
	if err := c.doRequest(ctx, endpoint, &list); err != nil {
		return nil, fmt.Errorf("get top players for %s: %w", location, err)
	}

	return list.Items, nil
}

// GetClanRankings retrieves the top n clans from a location leaderboard.
func (c *Client) GetClanRankings(ctx context.Context, location string, n int) ([]RankedClan, error) {
	endpoint := fmt.Sprintf("%s/locations/%s/rankings/clans?limit=%d",
		c.baseURL, url.PathEscape(location), n)

	var list itemList[RankedClan]
	if err := c.doRequest(ctx, endpoint, &list); err != nil {
		return nil, fmt.Errorf("get clan rankings for %s: %w", location, err)
	}

	return list.Items, nil
}

// GetClanMembers retrieves the member roster of a clan.
func (c *Client) GetClanMembers(ctx context.Context, clanTag string) ([]ClanMember, error) {
	endpoint := fmt.Sprintf("%s/clans/%s/members", c.baseURL, url.PathEscape(clanTag))

	var list itemList[ClanMember]
	if err := c.doRequest(ctx, endpoint, &list); err != nil {
		return nil, fmt.Errorf("get members for clan %s: %w", clanTag, err)
	}

	return list.Items, nil
}

// GetCards retrieves the full card catalog.
func (c *Client) GetCards(ctx context.Context) ([]CatalogCard, error) {
	endpoint := fmt.Sprintf("%s/cards", c.baseURL)

	var list itemList[CatalogCard]
	if err := c.doRequest(ctx, endpoint, &list); err != nil {
		return nil, fmt.Errorf("get card catalog: %w", err)
	}

	return list.Items, nil
}

// doRequest performs one GET with rate limiting and throttle backoff.
// A backoff sleep blocks only the calling goroutine; other workers keep
// dispatching through the shared limiter.
func (c *Client) doRequest(ctx context.Context, endpoint string, result any) error {
	backoff := c.backoffBase
	var retryAfter string

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &UnavailableError{URL: endpoint, Err: err}
		}

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return fmt.Errorf("read response body: %w", err)
			}
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			return nil

		case http.StatusTooManyRequests:
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			retryAfter = resp.Header.Get("Retry-After")

			if attempt < c.maxRetries {
				delay := backoff
				if retryAfter != "" {
					if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
						delay = time.Duration(secs) * time.Second
					}
				}
				c.sleep(delay)
				if backoff *= 2; backoff > maxBackoff {
					backoff = maxBackoff
				}
			}

		case http.StatusNotFound:
			_ = resp.Body.Close()
			return &NotFoundError{URL: endpoint}

		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			_ = resp.Body.Close()
			return &UnavailableError{URL: endpoint, StatusCode: resp.StatusCode}

		default:
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()

			var apiErr APIError
			if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Reason != "" {
				apiErr.StatusCode = resp.StatusCode
				return &apiErr
			}
			return fmt.Errorf("api request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}

	return &ThrottledError{URL: endpoint, RetryAfter: retryAfter, Attempts: c.maxRetries + 1}
}
