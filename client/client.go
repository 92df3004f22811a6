package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "archivist"
	maxErrorBody     = 1 << 10
)

// StatusError is returned when the remote answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e StatusError) Error() string {
	if e.Body == "" {
		return "unexpected status code: " + http.StatusText(e.StatusCode)
	}
	return "unexpected status code: " + http.StatusText(e.StatusCode) + ": " + e.Body
}

// Client performs the outbound calls of the archive: manifest dispatch and
// item uploads. Every request is bounded by the client timeout.
type Client struct {
	client    *http.Client
	userAgent string
}

func New(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient := http.Client{
		Timeout: timeout,
	}
	c := &Client{
		client:    &httpClient,
		userAgent: userAgent,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// Options tweaks a single request.
type Options struct {
	BasicUser     string
	BasicPassword string
	Headers       map[string]string
}

func (o Options) apply(req *http.Request) {
	if o.BasicUser != "" || o.BasicPassword != "" {
		req.SetBasicAuth(o.BasicUser, o.BasicPassword)
	}
	for k, v := range o.Headers {
		req.Header.Set(k, v)
	}
}

// PostForm sends values url-encoded and decodes a JSON answer into response
// when response is non-nil.
func (c *Client) PostForm(ctx context.Context, endpoint string, values url.Values, opts Options, response any) error {
	ctx, span := tracer.Start(ctx, "Client.PostForm")
	defer span.End()
	span.SetAttributes(attribute.String("endpoint", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	opts.apply(req)

	err = c.do(req, response)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// PostJSON sends body as JSON and decodes a JSON answer into response when
// response is non-nil.
func (c *Client) PostJSON(ctx context.Context, endpoint string, body any, opts Options, response any) error {
	ctx, span := tracer.Start(ctx, "Client.PostJSON")
	defer span.End()
	span.SetAttributes(attribute.String("endpoint", endpoint))

	payload, err := json.Marshal(body)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to encode body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	opts.apply(req)

	err = c.do(req, response)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (c *Client) do(req *http.Request, response any) error {
	slog.DebugContext(req.Context(), "outbound request",
		slog.String("module", "client"),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to perform request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if response == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}
