package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrUnauthorized is returned when the backend rejects the session (HTTP
// 401). Callers treat it as fatal: the session is gone and the operator has
// to log in again.
var ErrUnauthorized = errors.New("session unauthorized")

// APIClient defines the REST surface of the casualty-tracking backend.
type APIClient interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context) (*Profile, error)

	GetPrioritizedSoldiers(ctx context.Context) ([]Soldier, error)
	GetSoldier(ctx context.Context, devEUI string) (*Soldier, error)
	GetMedicalHistory(ctx context.Context, devEUI string, days int) (*MedicalHistory, error)
	GetNearbySoldiers(ctx context.Context, lat, lon, radiusKm float64) ([]NearbyResult, error)
	GetCriticalVitals(ctx context.Context) ([]NearbyResult, error)

	StartEvacuation(ctx context.Context, devEUI string) error
	CompleteEvacuation(ctx context.Context, devEUI string) error
	CancelEvacuation(ctx context.Context, devEUI string) error

	GetUnreadAlerts(ctx context.Context) ([]Alert, error)
	MarkAlertRead(ctx context.Context, alertID int64) error
	MarkAllAlertsRead(ctx context.Context) error

	BaseURL() string
}

// ClientConfig holds configuration for RestClient.
type ClientConfig struct {
	BaseURL            string
	InsecureSkipVerify bool
	RequestTimeout     time.Duration
}

// RestClient implements APIClient over the backend's cookie-session REST API.
//
// The backend requires an X-CSRFToken header on state-changing verbs. The
// token arrives as a cookie on any GET to /api/auth/; a request middleware
// copies the current cookie value into the header, fetching it first when
// the jar does not hold one yet. The login endpoint is the one state-changing
// call exempt from the check.
type RestClient struct {
	http       *resty.Client
	config     ClientConfig
	baseParsed *url.URL
}

const csrfCookieName = "csrftoken"

// NewRestClient constructs a RestClient from the given config.
// Returns an error if BaseURL is empty.
func NewRestClient(cfg ClientConfig) (*RestClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid BaseURL %q: %w", cfg.BaseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	r := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetCookieJar(jar).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
		})

	c := &RestClient{http: r, config: cfg, baseParsed: base}
	r.OnBeforeRequest(c.attachCSRFToken)
	return c, nil
}

// BaseURL returns the configured base URL of the backend.
func (c *RestClient) BaseURL() string {
	return c.config.BaseURL
}

// attachCSRFToken sets X-CSRFToken on state-changing requests, except login.
func (c *RestClient) attachCSRFToken(rc *resty.Client, req *resty.Request) error {
	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil
	}
	if req.URL == endpointLogin {
		return nil
	}

	token := c.csrfToken()
	if token == "" {
		// No token in the jar yet: GET /api/auth/ sets the csrftoken cookie.
		resp, err := rc.R().SetContext(req.Context()).SetDoNotParseResponse(true).Get(endpointAuth)
		if err != nil {
			return fmt.Errorf("fetch CSRF token: %w", err)
		}
		_ = resp.RawBody().Close()
		token = c.csrfToken()
	}
	if token != "" {
		req.SetHeader("X-CSRFToken", token)
	}
	return nil
}

// csrfToken returns the current csrftoken cookie value, or "".
func (c *RestClient) csrfToken() string {
	jar := c.http.GetClient().Jar
	if jar == nil || c.baseParsed == nil {
		return ""
	}
	for _, cookie := range jar.Cookies(c.baseParsed) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

// checkStatus converts a non-2xx resty response into an error. 401 maps to
// ErrUnauthorized so callers can tell a dead session from a transient fault.
func checkStatus(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return fmt.Errorf("status %d: %w", resp.StatusCode(), ErrUnauthorized)
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), truncate(resp.Body(), 200))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
