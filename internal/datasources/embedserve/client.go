package embedserve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

var _ datasources.FeatureExtractor = (*Client)(nil)

// Client extracts photo feature vectors via an embedding service exposing
// the image behind a URL to a fixed CNN backbone.
type Client struct {
	baseURL      string
	apiKey       string
	modelVersion string
	httpClient   *http.Client
}

// NewClient creates a new embedding service client. modelVersion names the
// backbone the service runs; it tags every extracted vector.
func NewClient(baseURL, apiKey, modelVersion string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		modelVersion: modelVersion,
		httpClient:   http.DefaultClient,
	}
}

type embedRequest struct {
	ImageURL string `json:"image_url"`
	Model    string `json:"model"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (c *Client) Version() string {
	return c.modelVersion
}

func (c *Client) Extract(ctx context.Context, photo domain.Photo) ([]float64, error) {
	reqBody := embedRequest{
		ImageURL: photo.ImageURL,
		Model:    c.modelVersion,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &domain.ExtractionError{PhotoID: photo.ID, Err: fmt.Errorf("marshalling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/embeddings/image",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, &domain.ExtractionError{PhotoID: photo.ID, Err: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ExtractionError{PhotoID: photo.ID, Err: fmt.Errorf("executing request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.ExtractionError{
			PhotoID: photo.ID,
			Err:     fmt.Errorf("embedding service error (status %d): %s", resp.StatusCode, string(body)),
		}
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &domain.ExtractionError{PhotoID: photo.ID, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if len(result.Embedding) == 0 {
		return nil, &domain.ExtractionError{PhotoID: photo.ID, Err: fmt.Errorf("empty embedding response")}
	}

	return result.Embedding, nil
}

// ExtractBatch extracts vectors photo by photo, dropping failed photos
// from both outputs. Context cancellation aborts the batch.
func (c *Client) ExtractBatch(ctx context.Context, photos []domain.Photo) ([][]float64, []domain.Photo, error) {
	logger := domain.LoggerFromContext(ctx)

	var vectors [][]float64
	var extracted []domain.Photo
	for _, photo := range photos {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		vector, err := c.Extract(ctx, photo)
		if err != nil {
			logger.WarnContext(ctx, "skipping photo after extraction failure",
				"photo_id", photo.ID,
				"error", err)
			continue
		}

		vectors = append(vectors, vector)
		extracted = append(extracted, photo)
	}
	return vectors, extracted, nil
}
