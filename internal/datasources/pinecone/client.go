package pinecone

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

var _ datasources.ProfileVectorIndex = (*Client)(nil)

const profileNamespace = "profiles"

// Client indexes profile photo vectors in Pinecone for coarse candidate
// recall ahead of exact compatibility scoring.
type Client struct {
	pinecone *pinecone.Client
	index    *pinecone.Index
}

func NewClient(ctx context.Context, apiKey, indexName string) (*Client, error) {
	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating pinecone client: %w", err)
	}

	idx, err := pc.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("retrieving pinecone index metadata for %s: %w", indexName, err)
	}

	return &Client{
		pinecone: pc,
		index:    idx,
	}, nil
}

func (c *Client) connect() (*pinecone.IndexConnection, error) {
	idxConn, err := c.pinecone.Index(pinecone.NewIndexConnParams{
		Host:      c.index.Host,
		Namespace: profileNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("creating pinecone index connection: %w", err)
	}
	return idxConn, nil
}

func (c *Client) UpsertProfileVector(ctx context.Context, userID string, vector []float64) error {
	idxConn, err := c.connect()
	if err != nil {
		return err
	}
	defer func() { _ = idxConn.Close() }()

	metadata, err := structpb.NewStruct(map[string]any{"user_id": userID})
	if err != nil {
		return fmt.Errorf("creating vector metadata: %w", err)
	}

	_, err = idxConn.UpsertVectors(ctx, []*pinecone.Vector{{
		Id:       userID,
		Values:   toFloat32(vector),
		Metadata: metadata,
	}})
	if err != nil {
		return fmt.Errorf("upserting profile vector for %s: %w", userID, err)
	}
	return nil
}

func (c *Client) ListSimilarProfiles(
	ctx context.Context,
	vector []float64,
	excludeUserIDs []string,
	limit int,
) ([]domain.SimilarProfile, error) {
	if limit > 10000 {
		return nil, fmt.Errorf("limit value too high [%d]", limit)
	}

	idxConn, err := c.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = idxConn.Close() }()

	filter, err := exclusionFilter(excludeUserIDs)
	if err != nil {
		return nil, err
	}

	resp, err := idxConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:         toFloat32(vector),
		TopK:           uint32(limit),
		MetadataFilter: filter,
	})
	if err != nil {
		return nil, fmt.Errorf("querying for similar profiles: %w", err)
	}

	var results []domain.SimilarProfile
	for _, scoredVector := range resp.Matches {
		if len(results) == limit {
			break
		}
		results = append(results, domain.SimilarProfile{
			UserID: scoredVector.Vector.Id,
			Score:  float64(scoredVector.Score),
		})
	}
	return results, nil
}

func exclusionFilter(excludeUserIDs []string) (*pinecone.MetadataFilter, error) {
	if len(excludeUserIDs) == 0 {
		return nil, nil
	}

	excluded := make([]any, 0, len(excludeUserIDs))
	for _, id := range excludeUserIDs {
		excluded = append(excluded, id)
	}

	filter, err := structpb.NewStruct(map[string]any{
		"user_id": map[string]any{
			"$nin": excluded,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating metadata filter map: %w", err)
	}
	return filter, nil
}

func toFloat32(vector []float64) []float32 {
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(v)
	}
	return out
}
