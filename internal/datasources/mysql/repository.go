package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

var _ datasources.ProfileRepository = (*Repository)(nil)
var _ datasources.MatchRepository = (*Repository)(nil)
var _ datasources.RejectionChecker = (*Repository)(nil)
var _ datasources.RejectionRecorder = (*Repository)(nil)
var _ datasources.GenerationStatusRepository = (*Repository)(nil)
var _ datasources.FeedbackWindowStore = (*Repository)(nil)
var _ datasources.ModelStore = (*Repository)(nil)
var _ datasources.RetrainStatusRepository = (*Repository)(nil)
var _ datasources.PhotoVectorWriter = (*Repository)(nil)

type Repository struct {
	db               *sql.DB
	feedbackCapacity int
}

func NewRepository(db *sql.DB, feedbackCapacity int) *Repository {
	if feedbackCapacity <= 0 {
		feedbackCapacity = datasources.DefaultFeedbackWindowCapacity
	}
	return &Repository{db: db, feedbackCapacity: feedbackCapacity}
}

const userColumns = "id, age, gender, location, last_active, premium, " +
	"pref_min_age, pref_max_age, pref_gender, pref_location"

func (r *Repository) FetchUser(ctx context.Context, userID string) (domain.User, error) {
	sb := sqlbuilder.Select(userColumns)
	sb.From("users")
	sb.Where(sb.Equal("id", userID))

	query, args := sb.Build()
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.User{}, fmt.Errorf("fetching user %s: %w", userID, err)
	}
	return user, nil
}

func (r *Repository) ListCandidates(ctx context.Context, userID string, limit int) ([]domain.User, error) {
	sb := sqlbuilder.Select(userColumns)
	sb.From("users")
	sb.Where(sb.NotEqual("id", userID))
	sb.OrderBy("last_active DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running candidates query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	var gender, prefGender string
	if err := row.Scan(
		&u.ID, &u.Age, &gender, &u.Location, &u.LastActive, &u.Premium,
		&u.Preferences.MinAge, &u.Preferences.MaxAge, &prefGender, &u.Preferences.Location,
	); err != nil {
		return domain.User{}, err
	}
	u.Gender = domain.Gender(gender)
	u.Preferences.Gender = domain.Gender(prefGender)
	return u, nil
}

const photoColumns = "id, owner_id, image_url, feature_vector, extractor_version"

func (r *Repository) ListUserPhotos(ctx context.Context, userID string) ([]domain.Photo, error) {
	sb := sqlbuilder.Select(photoColumns)
	sb.From("photos")
	sb.Where(sb.Equal("owner_id", userID))
	sb.OrderBy("id")

	return r.queryPhotos(ctx, sb)
}

func (r *Repository) FetchPhotos(ctx context.Context, photoIDs []string) ([]domain.Photo, error) {
	if len(photoIDs) == 0 {
		return nil, nil
	}

	ids := make([]interface{}, 0, len(photoIDs))
	for _, id := range photoIDs {
		ids = append(ids, id)
	}

	sb := sqlbuilder.Select(photoColumns)
	sb.From("photos")
	sb.Where(sb.In("id", ids...))

	return r.queryPhotos(ctx, sb)
}

func (r *Repository) queryPhotos(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]domain.Photo, error) {
	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running photos query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var photos []domain.Photo
	for rows.Next() {
		var p domain.Photo
		var vector []byte
		var extractorVersion sql.NullString
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.ImageURL, &vector, &extractorVersion); err != nil {
			return nil, fmt.Errorf("scanning photo: %w", err)
		}
		if vector != nil {
			p.FeatureVector, err = bytesToFloat64Slice(vector)
			if err != nil {
				return nil, fmt.Errorf("decoding photo %s feature vector: %w", p.ID, err)
			}
		}
		p.ExtractorVersion = extractorVersion.String
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating photos: %w", err)
	}
	return photos, nil
}

// StorePhotoFeatureVector caches an extracted feature vector against the
// photo, recording the extractor version that produced it.
func (r *Repository) StorePhotoFeatureVector(ctx context.Context, photoID string, vector []float64, extractorVersion string) error {
	ub := sqlbuilder.Update("photos")
	ub.Set(
		ub.Assign("feature_vector", float64SliceToBytes(vector)),
		ub.Assign("extractor_version", extractorVersion),
	)
	ub.Where(ub.Equal("id", photoID))

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("storing photo %s feature vector: %w", photoID, err)
	}
	return nil
}

func (r *Repository) ListPhotoRatings(ctx context.Context, userID string) ([]domain.PhotoRating, error) {
	sb := sqlbuilder.Select("user_id, photo_id, rating, rated_at")
	sb.From("photo_ratings")
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("rated_at")

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running photo ratings query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ratings []domain.PhotoRating
	for rows.Next() {
		var pr domain.PhotoRating
		if err := rows.Scan(&pr.UserID, &pr.PhotoID, &pr.Rating, &pr.RatedAt); err != nil {
			return nil, fmt.Errorf("scanning photo rating: %w", err)
		}
		ratings = append(ratings, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating photo ratings: %w", err)
	}
	return ratings, nil
}

func (r *Repository) FetchInterestVector(ctx context.Context, userID string) ([]float64, error) {
	sb := sqlbuilder.Select("interest_vector")
	sb.From("users")
	sb.Where(sb.Equal("id", userID))

	query, args := sb.Build()
	var blob []byte
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&blob); err != nil {
		return nil, fmt.Errorf("fetching interest vector for %s: %w", userID, err)
	}
	if blob == nil {
		return nil, nil
	}

	vector, err := bytesToFloat64Slice(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding interest vector for %s: %w", userID, err)
	}
	return vector, nil
}

func (r *Repository) ListInterestVectors(ctx context.Context, limit int) ([][]float64, error) {
	sb := sqlbuilder.Select("interest_vector")
	sb.From("users")
	sb.Where("interest_vector IS NOT NULL")
	sb.Limit(limit)

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running interest vectors query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var vectors [][]float64
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scanning interest vector: %w", err)
		}
		vector, err := bytesToFloat64Slice(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding interest vector: %w", err)
		}
		vectors = append(vectors, vector)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interest vectors: %w", err)
	}
	return vectors, nil
}

func (r *Repository) CreateMatchRecords(ctx context.Context, records []domain.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}

	ib := sqlbuilder.InsertInto("match_records")
	ib.Cols("id", "user_id", "candidate_id", "score", "created_at", "expires_at")
	for _, rec := range records {
		ib.Values(rec.ID, rec.UserID, rec.CandidateID, rec.Score, rec.CreatedAt, rec.ExpiresAt)
	}

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting match records: %w", err)
	}
	return nil
}

func (r *Repository) ListActiveMatches(ctx context.Context, userID string, now time.Time) ([]domain.MatchRecord, error) {
	sb := sqlbuilder.Select("id, user_id, candidate_id, score, created_at, expires_at")
	sb.From("match_records")
	sb.Where(
		sb.Equal("user_id", userID),
		sb.LessEqualThan("created_at", now),
		sb.GreaterThan("expires_at", now),
	)
	sb.OrderBy("score DESC")

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running active matches query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.MatchRecord
	for rows.Next() {
		var rec domain.MatchRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.CandidateID, &rec.Score, &rec.CreatedAt, &rec.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scanning match record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating match records: %w", err)
	}
	return records, nil
}

func (r *Repository) ListMatchedCandidateIDs(ctx context.Context, userID string, since time.Time) ([]string, error) {
	sb := sqlbuilder.Select("DISTINCT candidate_id")
	sb.From("match_records")
	sb.Where(
		sb.Equal("user_id", userID),
		sb.GreaterEqualThan("created_at", since),
	)

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running matched candidates query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning matched candidate id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matched candidate ids: %w", err)
	}
	return ids, nil
}

func (r *Repository) RejectedSince(ctx context.Context, userID, candidateID string, since time.Time) (bool, error) {
	sb := sqlbuilder.Select("COUNT(*)")
	sb.From("rejections")
	sb.Where(
		sb.Or(
			sb.And(sb.Equal("user_id", userID), sb.Equal("target_id", candidateID)),
			sb.And(sb.Equal("user_id", candidateID), sb.Equal("target_id", userID)),
		),
		sb.GreaterEqualThan("created_at", since),
	)

	query, args := sb.Build()
	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("counting rejections: %w", err)
	}
	return count > 0, nil
}

func (r *Repository) RecordRejection(ctx context.Context, userID, targetID string, at time.Time) error {
	ib := sqlbuilder.InsertInto("rejections")
	ib.Cols("user_id", "target_id", "created_at")
	ib.Values(userID, targetID, at)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("recording rejection: %w", err)
	}
	return nil
}

const listUsersDueSQL = `
SELECT u.id
FROM users u
LEFT JOIN match_generation_status s ON s.user_id = u.id
WHERE s.generated_at IS NULL OR s.generated_at < ?
ORDER BY s.generated_at IS NULL DESC, s.generated_at
LIMIT ?`

func (r *Repository) ListUsersDueForGeneration(ctx context.Context, generatedBefore time.Time, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listUsersDueSQL, generatedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("running due users query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning due user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due user ids: %w", err)
	}
	return ids, nil
}

const markGeneratedSQL = `
INSERT INTO match_generation_status (user_id, generated_at)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE generated_at = VALUES(generated_at)`

func (r *Repository) MarkGenerated(ctx context.Context, userID string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, markGeneratedSQL, userID, at); err != nil {
		return fmt.Errorf("marking generation for %s: %w", userID, err)
	}
	return nil
}

// trimFeedbackSQL drops the oldest rows beyond the window capacity. The
// derived table works around MySQL's restriction on selecting from the
// table being deleted from.
const trimFeedbackSQL = `
DELETE FROM feedback_events
WHERE user_id = ? AND id NOT IN (
    SELECT id FROM (
        SELECT id FROM feedback_events
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC
        LIMIT ?
    ) keep
)`

func (r *Repository) AppendFeedback(ctx context.Context, event domain.FeedbackEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ib := sqlbuilder.InsertInto("feedback_events")
	ib.Cols("user_id", "target_id", "kind", "score", "created_at")
	ib.Values(event.ActorID, event.TargetID, string(event.Kind), event.Score, event.At)

	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting feedback event: %w", err)
	}

	if _, err := tx.ExecContext(ctx, trimFeedbackSQL, event.ActorID, event.ActorID, r.feedbackCapacity); err != nil {
		return fmt.Errorf("trimming feedback window: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (r *Repository) ListFeedback(ctx context.Context, userID string) ([]domain.FeedbackEvent, error) {
	sb := sqlbuilder.Select("user_id, target_id, kind, score, created_at")
	sb.From("feedback_events")
	sb.Where(sb.Equal("user_id", userID))
	sb.OrderBy("created_at", "id")

	return r.queryFeedback(ctx, sb)
}

func (r *Repository) ListFeedbackSince(ctx context.Context, userID string, since time.Time) ([]domain.FeedbackEvent, error) {
	sb := sqlbuilder.Select("user_id, target_id, kind, score, created_at")
	sb.From("feedback_events")
	sb.Where(
		sb.Equal("user_id", userID),
		sb.GreaterEqualThan("created_at", since),
	)
	sb.OrderBy("created_at", "id")

	return r.queryFeedback(ctx, sb)
}

func (r *Repository) queryFeedback(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]domain.FeedbackEvent, error) {
	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running feedback query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []domain.FeedbackEvent
	for rows.Next() {
		var ev domain.FeedbackEvent
		var kind string
		if err := rows.Scan(&ev.ActorID, &ev.TargetID, &kind, &ev.Score, &ev.At); err != nil {
			return nil, fmt.Errorf("scanning feedback event: %w", err)
		}
		ev.Kind = domain.FeedbackKind(kind)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feedback events: %w", err)
	}
	return events, nil
}

const markRetrainDueSQL = `
INSERT INTO retrain_status (user_id, marked_at)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE marked_at = VALUES(marked_at)`

func (r *Repository) MarkRetrainDue(ctx context.Context, userID string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, markRetrainDueSQL, userID, at); err != nil {
		return fmt.Errorf("marking retrain due for %s: %w", userID, err)
	}
	return nil
}

func (r *Repository) ClearRetrainDue(ctx context.Context, userID string) error {
	db := sqlbuilder.DeleteFrom("retrain_status")
	db.Where(db.Equal("user_id", userID))

	query, args := db.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clearing retrain due for %s: %w", userID, err)
	}
	return nil
}

func (r *Repository) ListRetrainDueUsers(ctx context.Context, limit int) ([]string, error) {
	sb := sqlbuilder.Select("user_id")
	sb.From("retrain_status")
	sb.OrderBy("marked_at")
	sb.Limit(limit)

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("running retrain due query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning retrain due user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating retrain due user ids: %w", err)
	}
	return ids, nil
}

func (r *Repository) GetModel(ctx context.Context, userID string) ([]byte, error) {
	sb := sqlbuilder.Select("artifact")
	sb.From("preference_models")
	sb.Where(sb.Equal("user_id", userID))

	query, args := sb.Build()
	var artifact []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&artifact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, datasources.ErrModelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching preference model for %s: %w", userID, err)
	}
	return artifact, nil
}

const putModelSQL = `
INSERT INTO preference_models (user_id, artifact, updated_at)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE artifact = VALUES(artifact), updated_at = VALUES(updated_at)`

func (r *Repository) PutModel(ctx context.Context, userID string, artifact []byte) error {
	if _, err := r.db.ExecContext(ctx, putModelSQL, userID, artifact, time.Now()); err != nil {
		return fmt.Errorf("storing preference model for %s: %w", userID, err)
	}
	return nil
}

func (r *Repository) DeleteModel(ctx context.Context, userID string) error {
	db := sqlbuilder.DeleteFrom("preference_models")
	db.Where(db.Equal("user_id", userID))

	query, args := db.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting preference model for %s: %w", userID, err)
	}
	return nil
}

func (r *Repository) ModelExists(ctx context.Context, userID string) (bool, error) {
	sb := sqlbuilder.Select("COUNT(*)")
	sb.From("preference_models")
	sb.Where(sb.Equal("user_id", userID))

	query, args := sb.Build()
	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("checking preference model for %s: %w", userID, err)
	}
	return count > 0, nil
}
