package raven

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
	"github.com/custodia-labs/ravensource/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Config configures a Client.
type Config struct {
	// ServerURL is the base URL of the server, e.g. https://a.example.ravendb.cloud.
	ServerURL string

	// Certificate and Key are the PEM-encoded client certificate and key.
	// Both or neither must be set.
	Certificate []byte
	Key         []byte

	// RootCAs overrides the system roots used to verify the server.
	RootCAs *x509.CertPool

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64

	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Client queries collections on a RavenDB server.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	rateLimiter *RateLimiter
}

var _ driven.QueryClient = (*Client)(nil)

// NewClient creates a client. A certificate without a key, or a key without
// a certificate, is rejected before any request is made.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return nil, fmt.Errorf("%w: server URL is required", domain.ErrInvalidConfig)
	}
	baseURL, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse server URL: %w", domain.ErrInvalidConfig, err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: server URL must be http or https, got %q", domain.ErrInvalidConfig, cfg.ServerURL)
	}

	hasCert, hasKey := len(cfg.Certificate) > 0, len(cfg.Key) > 0
	if hasCert != hasKey {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, ErrIncompleteCredentials)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if hasCert || cfg.RootCAs != nil {
		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    cfg.RootCAs,
		}
		if hasCert {
			pair, err := tls.X509KeyPair(cfg.Certificate, cfg.Key)
			if err != nil {
				return nil, fmt.Errorf("%w: load client certificate: %w", domain.ErrInvalidConfig, err)
			}
			tlsConfig.Certificates = []tls.Certificate{pair}
		}
		transport.TLSClientConfig = tlsConfig
	}

	return &Client{
		baseURL:     baseURL,
		http:        &http.Client{Timeout: timeout, Transport: transport},
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// LoadCredentials reads the PEM certificate and key files. Both paths
// empty is valid and yields no credentials.
func LoadCredentials(certFile, keyFile string) (cert, key []byte, err error) {
	if (certFile == "") != (keyFile == "") {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, ErrIncompleteCredentials)
	}
	if certFile == "" {
		return nil, nil, nil
	}

	cert, err = os.ReadFile(certFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read certificate: %w", err)
	}
	key, err = os.ReadFile(keyFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read key: %w", err)
	}
	return cert, key, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// Query fetches every document of the collection with its includes.
// A 304 answer yields an empty result carrying the etag that was sent.
func (c *Client) Query(
	ctx context.Context, database string, collection domain.Collection, etag string,
) (*domain.QueryResult, error) {
	q := NewQueryRequest(database, collection, etag)
	req, err := q.httpRequest(c.baseURL)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	logger.Debug("raven: %s %s (%s)", q.Method, req.URL.Redacted(), q.Payload.Query)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send query: %w", err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckRateLimit(resp); err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return decodeResult(resp)
	case http.StatusNotModified:
		// The server confirmed the etag we sent.
		logger.Debug("raven: %s not modified (etag %s)", collection.Name, etag)
		return &domain.QueryResult{
			Documents: domain.Batch{},
			Includes:  domain.Includes{},
			Etag:      etag,
		}, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body, resp.Status),
			URL:        req.URL.Redacted(),
		}
	}
}

func decodeResult(resp *http.Response) (*domain.QueryResult, error) {
	var body queryResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode query result: empty body")
		}
		return nil, fmt.Errorf("decode query result: %w", err)
	}

	etag, err := parseEtag(body.ResultEtag)
	if err != nil {
		return nil, err
	}
	if etag == "" {
		etag = resp.Header.Get(HeaderETag)
	}

	result := &domain.QueryResult{
		Documents: body.Results,
		Includes:  body.Includes,
		Etag:      etag,
	}
	if result.Documents == nil {
		result.Documents = domain.Batch{}
	}
	if result.Includes == nil {
		result.Includes = domain.Includes{}
	}
	return result, nil
}
