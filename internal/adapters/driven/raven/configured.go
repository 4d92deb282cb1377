package raven

import (
	"context"
	"sync"

	"github.com/custodia-labs/ravensource/internal/core/domain"
	"github.com/custodia-labs/ravensource/internal/core/ports/driven"
)

// ConfiguredClient queries through a Client built from the current source
// configuration. The Client is rebuilt when the connection settings change,
// so a reloaded configuration takes effect on the next query.
type ConfiguredClient struct {
	store driven.ConfigStore

	mu       sync.Mutex
	client   *Client
	settings connectionSettings
}

var _ driven.QueryClient = (*ConfiguredClient)(nil)

// connectionSettings are the configuration fields a Client depends on.
type connectionSettings struct {
	serverURL         string
	certificateFile   string
	keyFile           string
	requestsPerSecond float64
}

// NewConfiguredClient creates a client reading its settings from store.
// Nothing is validated until the first query.
func NewConfiguredClient(store driven.ConfigStore) *ConfiguredClient {
	return &ConfiguredClient{store: store}
}

// Query implements driven.QueryClient.
func (c *ConfiguredClient) Query(
	ctx context.Context, database string, collection domain.Collection, etag string,
) (*domain.QueryResult, error) {
	client, err := c.current()
	if err != nil {
		return nil, err
	}
	return client.Query(ctx, database, collection, etag)
}

// current returns the client for the current settings, building it if needed.
func (c *ConfiguredClient) current() (*Client, error) {
	cfg := c.store.Config()
	settings := connectionSettings{
		serverURL:         cfg.ServerURL,
		certificateFile:   cfg.CertificateFile,
		keyFile:           cfg.KeyFile,
		requestsPerSecond: cfg.RequestsPerSecond,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil && c.settings == settings {
		return c.client, nil
	}

	cert, key, err := LoadCredentials(settings.certificateFile, settings.keyFile)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(Config{
		ServerURL:         settings.serverURL,
		Certificate:       cert,
		Key:               key,
		RequestsPerSecond: settings.requestsPerSecond,
	})
	if err != nil {
		return nil, err
	}

	c.client = client
	c.settings = settings
	return client, nil
}
