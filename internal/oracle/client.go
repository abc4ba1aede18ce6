// Package oracle looks up the latest published version of an artifact in a
// Maven repository through its maven-metadata.xml.
package oracle

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jakoblorz/go-mvnaudit/internal/models"
)

const (
	// DefaultBaseURL is Maven Central.
	DefaultBaseURL = "https://repo.maven.apache.org/maven2"

	defaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20
)

// Client queries a Maven repository for artifact metadata.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The client is not
// modified; a timeout set with WithTimeout applies to each request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the repository at baseURL (Maven Central when empty).
func NewClient(baseURL string, options ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// BaseURL returns the repository base the client queries.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Latest returns the latest published version of c's artifact. A 404 means
// the repository has no metadata for it: found is false and err is nil.
// Any other non-2xx status wraps models.ErrOracleStatus.
func (c *Client) Latest(ctx context.Context, coord models.Coordinate) (string, bool, error) {
	url := coord.MetadataURL(c.baseURL)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create request for %s: %w", coord.ArtifactKey(), err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch metadata for %s: %w", coord.ArtifactKey(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("no published metadata", "artifact", coord.ArtifactKey(), "url", url)
		return "", false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("%w: %s returned %d", models.ErrOracleStatus, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", false, fmt.Errorf("failed to read metadata for %s: %w", coord.ArtifactKey(), err)
	}

	latest, err := ParseMetadata(body)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", coord.ArtifactKey(), err)
	}
	if latest == "" {
		c.logger.Debug("metadata lists no versions", "artifact", coord.ArtifactKey())
		return "", false, nil
	}
	return latest, true, nil
}

type metadataXML struct {
	XMLName    xml.Name `xml:"metadata"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

// ParseMetadata extracts the latest version from a maven-metadata.xml
// document: versioning/latest, then versioning/release, then the last
// listed version. It returns "" when the document names none.
func ParseMetadata(data []byte) (string, error) {
	var m metadataXML
	if err := xml.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("%w: invalid metadata: %v", models.ErrOracleStatus, err)
	}

	v := m.Versioning
	if latest := strings.TrimSpace(v.Latest); latest != "" {
		return latest, nil
	}
	if release := strings.TrimSpace(v.Release); release != "" {
		return release, nil
	}
	for i := len(v.Versions) - 1; i >= 0; i-- {
		if version := strings.TrimSpace(v.Versions[i]); version != "" {
			return version, nil
		}
	}
	return "", nil
}
