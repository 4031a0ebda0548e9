package pinning

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/foodsafe/fs-indexer/internal/adapter"
	"github.com/foodsafe/fs-indexer/internal/domain"
	"github.com/foodsafe/fs-indexer/internal/logger"
)

// Config holds the Pinata API credentials and endpoints
type Config struct {
	APIKey       string
	SecretAPIKey string
	BaseURL      string // e.g. https://api.pinata.cloud
	GatewayURL   string // e.g. https://gateway.pinata.cloud
}

// PinResult holds the outcome of a pin operation
type PinResult struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// Pinner defines the interface for pinning content to IPFS
//
//go:generate mockgen -source=pinata.go -destination=../mocks/pinner.go -package=mocks -mock_names=Pinner=MockPinner
type Pinner interface {
	// PinJSON uploads a JSON payload and returns its content hash
	PinJSON(ctx context.Context, name string, payload interface{}) (string, error)

	// PinFile uploads a file and returns its content hash
	PinFile(ctx context.Context, fileName string, content []byte) (string, error)

	// Fetch retrieves pinned content through the gateway.
	// Returns domain.ErrDocumentNotFound when the hash resolves to nothing.
	Fetch(ctx context.Context, hash string) ([]byte, error)

	// PinByHash asks the pinning service to pin content that already
	// exists on the network, e.g. hashes observed in chain events
	PinByHash(ctx context.Context, hash string) error

	// Unpin removes content from the account's pin set
	Unpin(ctx context.Context, hash string) error

	// GatewayURL returns the public URL for a content hash
	GatewayURL(hash string) string
}

type pinataClient struct {
	config Config
	http   adapter.HTTPClient
	json   adapter.JSON
}

// NewPinataClient creates a Pinata-backed pinner
func NewPinataClient(cfg Config, httpClient adapter.HTTPClient, jsonAdapter adapter.JSON) Pinner {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.pinata.cloud"
	}
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = domain.DEFAULT_PINATA_GATEWAY
	}

	return &pinataClient{
		config: cfg,
		http:   httpClient,
		json:   jsonAdapter,
	}
}

func (p *pinataClient) authHeaders() map[string]string {
	return map[string]string{
		"pinata_api_key":        p.config.APIKey,
		"pinata_secret_api_key": p.config.SecretAPIKey,
	}
}

// PinJSON uploads a JSON payload via the pinJSONToIPFS endpoint
func (p *pinataClient) PinJSON(ctx context.Context, name string, payload interface{}) (string, error) {
	body, err := p.json.Marshal(map[string]interface{}{
		"pinataContent": payload,
		"pinataMetadata": map[string]interface{}{
			"name": name,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal pin request: %w", err)
	}

	respBody, err := p.http.Post(ctx,
		p.config.BaseURL+"/pinning/pinJSONToIPFS",
		"application/json",
		p.authHeaders(),
		bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to pin JSON: %w", err)
	}

	return p.parsePinResult(respBody)
}

// PinFile uploads a file via the pinFileToIPFS endpoint
func (p *pinataClient) PinFile(ctx context.Context, fileName string, content []byte) (string, error) {
	contentType := mimetype.Detect(content)
	logger.DebugCtx(ctx, "Pinning file",
		zap.String("file_name", fileName),
		zap.String("content_type", contentType.String()),
		zap.Int("size", len(content)))

	respBody, err := p.http.PostMultipart(ctx,
		p.config.BaseURL+"/pinning/pinFileToIPFS",
		p.authHeaders(),
		"file", fileName, content)
	if err != nil {
		return "", fmt.Errorf("failed to pin file: %w", err)
	}

	return p.parsePinResult(respBody)
}

// Fetch retrieves content through the configured gateway
func (p *pinataClient) Fetch(ctx context.Context, hash string) ([]byte, error) {
	status, body, err := p.http.GetRaw(ctx, p.GatewayURL(hash), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", hash, err)
	}

	switch status {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, hash)
	default:
		return nil, fmt.Errorf("gateway returned status %d for %s", status, hash)
	}
}

// PinByHash pins content already present on the network
func (p *pinataClient) PinByHash(ctx context.Context, hash string) error {
	body, err := p.json.Marshal(map[string]interface{}{
		"hashToPin": hash,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal pin request: %w", err)
	}

	_, err = p.http.Post(ctx,
		p.config.BaseURL+"/pinning/pinByHash",
		"application/json",
		p.authHeaders(),
		bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to pin hash %s: %w", hash, err)
	}

	return nil
}

// Unpin removes content from the pin set
func (p *pinataClient) Unpin(ctx context.Context, hash string) error {
	if err := p.http.Delete(ctx, p.config.BaseURL+"/pinning/unpin/"+hash, p.authHeaders()); err != nil {
		return fmt.Errorf("failed to unpin %s: %w", hash, err)
	}

	return nil
}

// GatewayURL returns the public gateway URL for a content hash
func (p *pinataClient) GatewayURL(hash string) string {
	return fmt.Sprintf("%s/ipfs/%s", strings.TrimRight(p.config.GatewayURL, "/"), hash)
}

func (p *pinataClient) parsePinResult(respBody []byte) (string, error) {
	var result PinResult
	if err := p.json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode pin response: %w", err)
	}
	if result.IpfsHash == "" {
		return "", fmt.Errorf("pin response missing content hash: %s", string(respBody))
	}

	return result.IpfsHash, nil
}
