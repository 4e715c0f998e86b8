package proxy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stitts-dev/hr-parlay/internal/providers"
	"github.com/stitts-dev/hr-parlay/pkg/utils"
)

const redacted = "[redacted]"

// passthroughHeaders are the only upstream response headers clients see.
var passthroughHeaders = []string{
	"Content-Type",
	"X-Requests-Remaining",
	"X-Requests-Used",
	"X-Requests-Last",
}

// Upstream describes one credentialed provider behind the proxy.
type Upstream struct {
	Name    string
	BaseURL string
	// Secret is the credential injected into requests and scrubbed from
	// responses. Empty means the upstream is not configured.
	Secret string
	// Inject adds the credential to an outbound request.
	Inject func(req *http.Request, secret string)
}

// ServiceClient forwards requests to a single upstream.
type ServiceClient struct {
	upstream   Upstream
	httpClient *http.Client
	logger     *logrus.Logger
}

// UpstreamResponse is a buffered provider reply with credentials scrubbed.
type UpstreamResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// ProviderProxy lets the browser reach credentialed providers without ever
// seeing the credentials.
type ProviderProxy struct {
	clients         map[string]*ServiceClient
	circuitBreakers map[string]*gobreaker.CircuitBreaker
	logger          *logrus.Logger
}

func NewServiceClient(upstream Upstream, timeout time.Duration, logger *logrus.Logger) *ServiceClient {
	return &ServiceClient{
		upstream: upstream,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		logger: logger,
	}
}

// OddsUpstream injects the Odds API key as the apiKey query parameter.
func OddsUpstream(baseURL, apiKey string) Upstream {
	return Upstream{
		Name:    providers.ProviderOdds,
		BaseURL: baseURL,
		Secret:  apiKey,
		Inject: func(req *http.Request, secret string) {
			q := req.URL.Query()
			q.Set("apiKey", secret)
			req.URL.RawQuery = q.Encode()
		},
	}
}

// BallDontLieUpstream injects the key as the Authorization header.
func BallDontLieUpstream(baseURL, apiKey string) Upstream {
	return Upstream{
		Name:    providers.ProviderBallDontLie,
		BaseURL: baseURL,
		Secret:  apiKey,
		Inject: func(req *http.Request, secret string) {
			req.Header.Set("Authorization", secret)
		},
	}
}

func NewProviderProxy(upstreams []Upstream, timeout time.Duration, logger *logrus.Logger) *ProviderProxy {
	clients := make(map[string]*ServiceClient, len(upstreams))
	breakers := make(map[string]*gobreaker.CircuitBreaker, len(upstreams))

	for _, u := range upstreams {
		clients[u.Name] = NewServiceClient(u, timeout, logger)
		breakers[u.Name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "proxy-" + u.Name,
			MaxRequests: 3,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"service":    name,
					"from_state": from.String(),
					"to_state":   to.String(),
				}).Warn("Circuit breaker state changed")
			},
		})
	}

	return &ProviderProxy{
		clients:         clients,
		circuitBreakers: breakers,
		logger:          logger,
	}
}

// RegisterRoutes mounts /odds, /bdl/*path and /health on group.
func (pp *ProviderProxy) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/odds", pp.ProxyOdds)
	group.GET("/bdl/*path", pp.ProxyBallDontLie)
	group.GET("/health", pp.Health)
}

// ProxyOdds fetches the MLB board with h2h and totals markets.
func (pp *ProviderProxy) ProxyOdds(c *gin.Context) {
	query := c.Request.URL.Query()
	query.Del("apiKey")
	setDefault(query, "regions", "us")
	setDefault(query, "markets", "h2h,totals")
	setDefault(query, "oddsFormat", "american")
	pp.proxyRequest(c, providers.ProviderOdds, "/sports/baseball_mlb/odds", query)
}

// ProxyBallDontLie forwards any read-only BallDontLie MLB path.
func (pp *ProviderProxy) ProxyBallDontLie(c *gin.Context) {
	path := c.Param("path")
	if path == "" || path == "/" || strings.Contains(path, "..") {
		utils.SendValidationError(c, "Invalid provider path", path)
		return
	}
	pp.proxyRequest(c, providers.ProviderBallDontLie, path, c.Request.URL.Query())
}

func setDefault(q url.Values, key, value string) {
	if q.Get(key) == "" {
		q.Set(key, value)
	}
}

// Health reports which upstreams are configured and their breaker status.
func (pp *ProviderProxy) Health(c *gin.Context) {
	upstreams := pp.GetCircuitBreakerStatus()
	for name, client := range pp.clients {
		upstreams[name]["configured"] = client.upstream.Secret != ""
	}
	utils.SendSuccess(c, gin.H{
		"status":    "ok",
		"upstreams": upstreams,
	})
}

func (pp *ProviderProxy) proxyRequest(c *gin.Context, name, path string, query url.Values) {
	client, ok := pp.clients[name]
	if !ok || client.upstream.Secret == "" {
		utils.SendError(c, http.StatusServiceUnavailable,
			utils.NewAppError(utils.ErrCodeServiceUnavailable, fmt.Sprintf("%s is not configured", name)))
		return
	}

	result, err := pp.circuitBreakers[name].Execute(func() (interface{}, error) {
		return client.ForwardRequest(c, path, query)
	})
	if err != nil {
		// details stay in the log; they may contain the upstream URL
		pp.logger.WithError(errors.New(client.scrub(err.Error()))).WithField("service", name).Error("Provider request failed")

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			utils.SendError(c, http.StatusServiceUnavailable,
				utils.NewAppError(utils.ErrCodeServiceUnavailable, fmt.Sprintf("%s is currently unavailable", name)))
			return
		}
		utils.SendError(c, http.StatusBadGateway,
			utils.NewAppError(utils.ErrCodeBadGateway, fmt.Sprintf("Failed to communicate with %s", name)))
		return
	}

	resp := result.(*UpstreamResponse)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		pp.logger.WithFields(logrus.Fields{
			"service":     name,
			"status_code": resp.StatusCode,
		}).Warn("Provider returned an error status")
		utils.SendError(c, http.StatusBadGateway,
			utils.NewAppError(utils.ErrCodeBadGateway, fmt.Sprintf("%s returned an error", name)))
		return
	}

	for _, h := range passthroughHeaders {
		if v := resp.Headers.Get(h); v != "" {
			c.Header(h, client.scrub(v))
		}
	}
	contentType := resp.Headers.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}

// ForwardRequest performs the upstream call. Transport failures and 5xx
// responses are errors so the breaker counts them; other statuses are
// returned for the caller to map.
func (sc *ServiceClient) ForwardRequest(c *gin.Context, path string, query url.Values) (*UpstreamResponse, error) {
	target, err := url.Parse(strings.TrimRight(sc.upstream.BaseURL, "/") + path)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream url: %w", err)
	}
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Forwarded-By", "hr-parlay")
	sc.upstream.Inject(req, sc.upstream.Secret)

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request to %s: %w", sc.upstream.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	sc.logger.WithFields(logrus.Fields{
		"service":     sc.upstream.Name,
		"path":        path,
		"status_code": resp.StatusCode,
	}).Debug("Forwarded request to provider")

	if resp.StatusCode >= 500 {
		return nil, &providers.StatusError{Provider: sc.upstream.Name, StatusCode: resp.StatusCode}
	}

	if sc.upstream.Secret != "" {
		body = bytes.ReplaceAll(body, []byte(sc.upstream.Secret), []byte(redacted))
	}
	return &UpstreamResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}

func (sc *ServiceClient) scrub(s string) string {
	if sc.upstream.Secret == "" {
		return s
	}
	return strings.ReplaceAll(s, sc.upstream.Secret, redacted)
}

// GetCircuitBreakerStatus returns the status of all proxy breakers.
func (pp *ProviderProxy) GetCircuitBreakerStatus() map[string]map[string]interface{} {
	status := make(map[string]map[string]interface{}, len(pp.circuitBreakers))

	for name, cb := range pp.circuitBreakers {
		counts := cb.Counts()
		status[name] = map[string]interface{}{
			"state":                 cb.State().String(),
			"requests":              counts.Requests,
			"total_successes":       counts.TotalSuccesses,
			"total_failures":        counts.TotalFailures,
			"consecutive_successes": counts.ConsecutiveSuccesses,
			"consecutive_failures":  counts.ConsecutiveFailures,
		}
	}

	return status
}
