package datasources

import (
	"context"
	"time"

	"github.com/noswipe/noswipe-backend/internal/domain"
)

// APITokenWriter covers the mutating token operations.
type APITokenWriter interface {
	CreateAPIToken(
		ctx context.Context,
		id, userID, tokenHash, tokenPrefix string,
		name *string,
		expiresAt *time.Time,
	) error
	UpdateAPITokenLastUsed(ctx context.Context, tokenID string) error
	RevokeAPIToken(ctx context.Context, tokenID, userID string) error
}

// APITokenReader covers the token lookup operations.
type APITokenReader interface {
	GetAPITokenByHash(ctx context.Context, tokenHash string) (domain.APIToken, error)
	ListUserAPITokens(ctx context.Context, userID string) ([]domain.APIToken, error)
	CountUserActiveAPITokens(ctx context.Context, userID string) (int64, error)
}

// APITokenRepository combines all API token operations.
type APITokenRepository interface {
	APITokenWriter
	APITokenReader
}
