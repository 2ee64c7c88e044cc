package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ids"
	"github.com/bnema/skilllink-cli/internal/logging"
	"github.com/bnema/skilllink-cli/internal/obs"
	"github.com/bnema/skilllink-cli/internal/ports"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	RefreshPath = "/api/auth/refresh"

	FallbackMessage = "An error occurred"
	RequestIDHeader = "X-Request-ID"

	defaultRefreshTimeout = 15 * time.Second
	refreshFlightKey      = "refresh"
)

// Gateway is the single HTTP client every typed service goes through. It
// attaches the stored bearer token and recovers from one 401 per call by
// refreshing the access token.
type Gateway struct {
	baseURL        string
	session        ports.SessionStore
	client         *http.Client
	notifier       ports.Notifier
	onSessionEnded func()
	logger         logrus.FieldLogger
	limiter        *rate.Limiter
	metrics        *obs.GatewayMetrics
	timeout        time.Duration
	newRequestID   func() string

	refreshes singleflight.Group
}

type Option func(*Gateway)

func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		if client != nil {
			g.client = client
		}
	}
}

func WithNotifier(notifier ports.Notifier) Option {
	return func(g *Gateway) {
		if notifier != nil {
			g.notifier = notifier
		}
	}
}

// WithSessionEnded registers the callback fired after a failed refresh has
// cleared the stored tokens.
func WithSessionEnded(fn func()) Option {
	return func(g *Gateway) {
		g.onSessionEnded = fn
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRateLimit caps outgoing calls per second. Zero disables the limiter.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(g *Gateway) {
		if perSecond <= 0 {
			g.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithMetrics(metrics *obs.GatewayMetrics) Option {
	return func(g *Gateway) {
		g.metrics = metrics
	}
}

// WithTimeout bounds one Send, retry included. Zero means no bound.
func WithTimeout(timeout time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = timeout
	}
}

func WithRequestIDs(fn func() string) Option {
	return func(g *Gateway) {
		if fn != nil {
			g.newRequestID = fn
		}
	}
}

func NewGateway(baseURL string, session ports.SessionStore, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:      strings.TrimRight(baseURL, "/"),
		session:      session,
		client:       http.DefaultClient,
		notifier:     ports.NopNotifier{},
		logger:       logging.Discard(),
		newRequestID: ids.New,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Request describes one logical API call. Auth is attached unless SkipAuth
// is set. Body is JSON encoded; Multipart takes precedence when present.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Multipart *Form
	SkipAuth  bool
	Header    http.Header
}

type Form struct {
	Fields []FormField
	Files  []FormFile
}

type FormField struct {
	Name  string
	Value string
}

type FormFile struct {
	Field   string
	Name    string
	Content []byte
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// DecodeData unwraps the {success, message, data} envelope into v.
func (r *Response) DecodeData(v any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := r.Decode(&env); err != nil {
		return err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func (r *Response) Message() string {
	return envelopeMessage(r.Body)
}

// call carries one logical request through its attempts. retries is the
// remaining retry budget and only ever decreases.
type call struct {
	req       Request
	body      payload
	requestID string
	retries   int
}

type payload struct {
	contentType string
	data        []byte
}

func (p payload) reader() io.Reader {
	if p.data == nil {
		return nil
	}
	return bytes.NewReader(p.data)
}

func (g *Gateway) Send(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	body, err := encodeBody(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	c := &call{req: req, body: body, requestID: g.newRequestID(), retries: 1}

	token := ""
	if !req.SkipAuth {
		token, err = g.session.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s %s: read access token: %w", req.Method, req.Path, err)
		}
	}

	resp, err := g.do(ctx, c, token)
	if err != nil {
		return nil, g.transportFailure(c, err)
	}

	if resp.StatusCode != http.StatusUnauthorized || req.SkipAuth || c.retries == 0 {
		return g.finish(c, resp)
	}
	c.retries--

	next, err := g.refresh(ctx, token)
	if err != nil {
		apiErr := newError(c.req, resp)
		apiErr.SessionEnded = !errors.Is(err, domain.ErrNoRefreshToken)
		g.logger.WithFields(g.fields(c)).WithError(err).Info("token refresh did not recover request")
		g.notifier.Error(apiErr.UserMessage())
		return nil, apiErr
	}

	resp, err = g.do(ctx, c, next)
	if err != nil {
		return nil, g.transportFailure(c, err)
	}

	return g.finish(c, resp)
}

func (g *Gateway) do(ctx context.Context, c *call, token string) (*Response, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, c.req.Method, g.url(c.req.Path, c.req.Query), c.body.reader())
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, values := range c.req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, c.requestID)
	if c.body.contentType != "" {
		httpReq.Header.Set("Content-Type", c.body.contentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		g.metrics.ObserveRequest(c.req.Method, c.req.Path, 0, time.Since(start))
		return nil, err
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	data, err := io.ReadAll(httpResp.Body)
	g.metrics.ObserveRequest(c.req.Method, c.req.Path, httpResp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	g.logger.WithFields(g.fields(c)).WithFields(logrus.Fields{
		"status":  httpResp.StatusCode,
		"elapsed": time.Since(start).String(),
	}).Debug("api request")

	return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data}, nil
}

func (g *Gateway) finish(c *call, resp *Response) (*Response, error) {
	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	apiErr := newError(c.req, resp)
	g.logger.WithFields(g.fields(c)).WithField("status", resp.StatusCode).Warn(apiErr.UserMessage())
	g.notifier.Error(apiErr.UserMessage())
	return nil, apiErr
}

func (g *Gateway) transportFailure(c *call, err error) error {
	wrapped := fmt.Errorf("%s %s: %w", c.req.Method, c.req.Path, err)
	if errors.Is(err, context.Canceled) {
		return wrapped
	}

	g.logger.WithFields(g.fields(c)).WithError(err).Warn("api request failed")
	g.notifier.Error(FallbackMessage)
	return wrapped
}

// refresh returns an access token to retry with. A token that already
// differs from the rejected one was rotated by a concurrent caller and is
// reused as is. Concurrent callers share one refresh call.
func (g *Gateway) refresh(ctx context.Context, rejected string) (string, error) {
	if current, err := g.session.AccessToken(ctx); err == nil && current != "" && current != rejected {
		g.metrics.ObserveRefresh(obs.RefreshSkipped)
		return current, nil
	}

	result, err, shared := g.refreshes.Do(refreshFlightKey, func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.refreshTimeout())
		defer cancel()

		if current, err := g.session.AccessToken(refreshCtx); err == nil && current != "" && current != rejected {
			return current, nil
		}
		return g.refreshOnce(refreshCtx)
	})
	if shared {
		g.metrics.ObserveRefresh(obs.RefreshShared)
	}
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (g *Gateway) refreshOnce(ctx context.Context) (string, error) {
	refreshToken, err := g.session.RefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	if refreshToken == "" {
		g.metrics.ObserveRefresh(obs.RefreshSkipped)
		return "", domain.ErrNoRefreshToken
	}

	next, err := g.requestRefresh(ctx, refreshToken)
	if err != nil {
		g.metrics.ObserveRefresh(obs.RefreshFailed)
		return "", g.endSession(ctx, err)
	}

	if next.RefreshToken != "" {
		err = g.session.SetTokens(ctx, next)
	} else {
		err = g.session.SetAccessToken(ctx, next.AccessToken)
	}
	if err != nil {
		g.metrics.ObserveRefresh(obs.RefreshFailed)
		return "", g.endSession(ctx, fmt.Errorf("persist refreshed token: %w", err))
	}

	g.metrics.ObserveRefresh(obs.RefreshSucceeded)
	g.logger.Debug("access token refreshed")
	return next.AccessToken, nil
}

// requestRefresh is a bare call that never goes through Send, so a 401 on
// the refresh endpoint cannot trigger another refresh.
func (g *Gateway) requestRefresh(ctx context.Context, refreshToken string) (domain.Session, error) {
	data, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return domain.Session{}, fmt.Errorf("encode refresh request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(RefreshPath, nil), bytes.NewReader(data))
	if err != nil {
		return domain.Session{}, fmt.Errorf("build refresh request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(RequestIDHeader, g.newRequestID())

	start := time.Now()
	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		g.metrics.ObserveRequest(http.MethodPost, RefreshPath, 0, time.Since(start))
		return domain.Session{}, fmt.Errorf("refresh request: %w", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	g.metrics.ObserveRequest(http.MethodPost, RefreshPath, httpResp.StatusCode, time.Since(start))
	if err != nil {
		return domain.Session{}, fmt.Errorf("read refresh response: %w", err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return domain.Session{}, fmt.Errorf("refresh request returned status %d", httpResp.StatusCode)
	}

	return decodeRefresh(body)
}

func decodeRefresh(body []byte) (domain.Session, error) {
	var env struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		Data         struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.Session{}, fmt.Errorf("decode refresh response: %w", err)
	}

	next := domain.Session{AccessToken: env.Data.AccessToken, RefreshToken: env.Data.RefreshToken}
	if next.AccessToken == "" {
		next = domain.Session{AccessToken: env.AccessToken, RefreshToken: env.RefreshToken}
	}
	if next.AccessToken == "" {
		return domain.Session{}, errors.New("refresh response has no access token")
	}

	return next, nil
}

func (g *Gateway) endSession(ctx context.Context, cause error) error {
	if err := g.session.ClearTokens(ctx); err != nil {
		cause = errors.Join(cause, fmt.Errorf("clear tokens: %w", err))
	}

	g.logger.WithError(cause).Info("session ended")
	if g.onSessionEnded != nil {
		g.onSessionEnded()
	}

	return fmt.Errorf("%w: %w", domain.ErrSessionEnded, cause)
}

func (g *Gateway) refreshTimeout() time.Duration {
	if g.timeout > 0 {
		return g.timeout
	}
	return defaultRefreshTimeout
}

func (g *Gateway) url(path string, query url.Values) string {
	target := g.baseURL + "/" + strings.TrimLeft(path, "/")
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target
}

func (g *Gateway) fields(c *call) logrus.Fields {
	return logrus.Fields{
		"method":     c.req.Method,
		"path":       c.req.Path,
		"request_id": c.requestID,
	}
}

func encodeBody(req Request) (payload, error) {
	switch {
	case req.Multipart != nil:
		return encodeMultipart(req.Multipart)
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return payload{}, fmt.Errorf("encode request body: %w", err)
		}
		return payload{contentType: "application/json", data: data}, nil
	default:
		return payload{}, nil
	}
}

func encodeMultipart(form *Form) (payload, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range form.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return payload{}, fmt.Errorf("encode form field %q: %w", field.Name, err)
		}
	}
	for _, file := range form.Files {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return payload{}, fmt.Errorf("encode form file %q: %w", file.Name, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return payload{}, fmt.Errorf("encode form file %q: %w", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return payload{}, fmt.Errorf("encode multipart body: %w", err)
	}

	return payload{contentType: writer.FormDataContentType(), data: buf.Bytes()}, nil
}
