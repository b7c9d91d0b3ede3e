package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

var _ datasources.APITokenRepository = (*Repository)(nil)

const apiTokenColumns = "id, user_id, token_hash, token_prefix, name, created_at, last_used_at, expires_at, revoked_at"

func (r *Repository) CreateAPIToken(
	ctx context.Context,
	id, userID, tokenHash, tokenPrefix string,
	name *string,
	expiresAt *time.Time,
) error {
	ib := sqlbuilder.InsertInto("api_tokens")
	ib.Cols("id", "user_id", "token_hash", "token_prefix", "name", "created_at", "expires_at")
	ib.Values(id, userID, tokenHash, tokenPrefix, name, time.Now(), expiresAt)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting API token: %w", err)
	}
	return nil
}

func (r *Repository) GetAPITokenByHash(ctx context.Context, tokenHash string) (domain.APIToken, error) {
	sb := sqlbuilder.Select(apiTokenColumns)
	sb.From("api_tokens")
	sb.Where(sb.Equal("token_hash", tokenHash))

	query, args := sb.Build()
	token, err := scanAPIToken(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.APIToken{}, fmt.Errorf("fetching API token by hash: %w", err)
	}
	return token, nil
}

func (r *Repository) UpdateAPITokenLastUsed(ctx context.Context, tokenID string) error {
	ub := sqlbuilder.Update("api_tokens")
	ub.Set(ub.Assign("last_used_at", time.Now()))
	ub.Where(ub.Equal("id", tokenID))

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating API token last used: %w", err)
	}
	return nil
}

func (r *Repository) ListUserAPITokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	sb := sqlbuilder.Select(apiTokenColumns)
	sb.From("api_tokens")
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("created_at DESC")

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running API tokens query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tokens []domain.APIToken
	for rows.Next() {
		token, err := scanAPIToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning API token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating API tokens: %w", err)
	}
	return tokens, nil
}

func (r *Repository) CountUserActiveAPITokens(ctx context.Context, userID string) (int64, error) {
	sb := sqlbuilder.Select("COUNT(*)")
	sb.From("api_tokens")
	sb.Where(
		sb.Equal("user_id", userID),
		sb.IsNull("revoked_at"),
		sb.Or(sb.IsNull("expires_at"), sb.GreaterThan("expires_at", time.Now())),
	)

	query, args := sb.Build()
	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting active API tokens: %w", err)
	}
	return count, nil
}

func (r *Repository) RevokeAPIToken(ctx context.Context, tokenID, userID string) error {
	ub := sqlbuilder.Update("api_tokens")
	ub.Set(ub.Assign("revoked_at", time.Now()))
	ub.Where(
		ub.Equal("id", tokenID),
		ub.Equal("user_id", userID),
		ub.IsNull("revoked_at"),
	)

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("revoking API token: %w", err)
	}
	return nil
}

func scanAPIToken(row rowScanner) (domain.APIToken, error) {
	var t domain.APIToken
	if err := row.Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.Prefix, &t.Name,
		&t.CreatedAt, &t.LastUsedAt, &t.ExpiresAt, &t.RevokedAt,
	); err != nil {
		return domain.APIToken{}, err
	}
	return t, nil
}
