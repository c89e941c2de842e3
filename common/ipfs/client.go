// Package ipfs is a thin client for an IPFS pinning service: publish
// bytes via the /api/v0/add RPC, fetch them back through the read
// gateway. Both paths use basic-auth project credentials.
package ipfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/justicantus/mediagate/common/config"
	"github.com/justicantus/mediagate/common/logger"
)

var (
	// ErrStoreUnavailable indicates a transport-level failure or timeout
	// reaching the storage service.
	ErrStoreUnavailable = errors.New("ipfs: storage service unavailable")

	// ErrStoreRejected indicates the storage service answered with a
	// non-2xx status.
	ErrStoreRejected = errors.New("ipfs: storage service rejected request")
)

// AddResponse mirrors the pinning service's add response shape.
type AddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Client talks to the pinning service and read gateway.
type Client struct {
	http        *http.Client
	addEndpoint string
	gateway     string
	apiKey      string
	apiSecret   string
	log         *logger.Logger
}

// New creates a storage client from configuration.
func New(cfg config.StorageConfig, log *logger.Logger) *Client {
	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		addEndpoint: strings.TrimSuffix(cfg.AddEndpoint, "/") + "/api/v0/add?pin=true",
		gateway:     cfg.GatewayEndpoint,
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		log:         log,
	}
}

// Publish uploads the reader's bytes as a pinned object and returns the
// assigned content identifier.
func (c *Client) Publish(ctx context.Context, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", "file")
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.addEndpoint, pr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("publish transport failure", "error", err)
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error("publish rejected", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("%w: status %d", ErrStoreRejected, resp.StatusCode)
	}

	var added AddResponse
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		return "", fmt.Errorf("%w: decoding add response: %v", ErrStoreRejected, err)
	}
	if added.Hash == "" {
		return "", fmt.Errorf("%w: add response missing hash", ErrStoreRejected)
	}

	c.log.Debug("published object", "cid", added.Hash)
	return added.Hash, nil
}

// Fetch downloads the object behind cid into a request-scoped scratch
// file and returns its path with a cleanup func. The body is streamed
// to disk rather than buffered; the scratch name is unique per request
// so concurrent fetches never collide.
func (c *Client) Fetch(ctx context.Context, cid string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gateway+cid, nil)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("fetch transport failure", "cid", cid, "error", err)
		return "", nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("fetch rejected", "cid", cid, "status", resp.StatusCode)
		return "", nil, fmt.Errorf("%w: status %d", ErrStoreRejected, resp.StatusCode)
	}

	scratch := filepath.Join(os.TempDir(), uuid.NewString()+".enc")
	f, err := os.Create(scratch)
	if err != nil {
		return "", nil, fmt.Errorf("creating scratch file: %w", err)
	}
	cleanup := func() { os.Remove(scratch) }

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("%w: streaming body: %v", ErrStoreUnavailable, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing scratch file: %w", err)
	}

	return scratch, cleanup, nil
}
