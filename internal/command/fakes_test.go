package command

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noswipe/noswipe-backend/internal/datasources"
	"github.com/noswipe/noswipe-backend/internal/domain"
)

type fakeProfiles struct {
	users     map[string]domain.User
	photos    map[string][]domain.Photo
	ratings   map[string][]domain.PhotoRating
	interests map[string][]float64
	corpus    [][]float64
}

var _ datasources.ProfileRepository = (*fakeProfiles)(nil)

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		users:     map[string]domain.User{},
		photos:    map[string][]domain.Photo{},
		ratings:   map[string][]domain.PhotoRating{},
		interests: map[string][]float64{},
	}
}

func (f *fakeProfiles) FetchUser(_ context.Context, userID string) (domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s not found", userID)
	}
	return user, nil
}

func (f *fakeProfiles) ListCandidates(_ context.Context, userID string, limit int) ([]domain.User, error) {
	var out []domain.User
	for id, user := range f.users {
		if id == userID || len(out) == limit {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (f *fakeProfiles) ListUserPhotos(_ context.Context, userID string) ([]domain.Photo, error) {
	return f.photos[userID], nil
}

func (f *fakeProfiles) FetchPhotos(_ context.Context, photoIDs []string) ([]domain.Photo, error) {
	var out []domain.Photo
	for _, id := range photoIDs {
		for _, owned := range f.photos {
			for _, photo := range owned {
				if photo.ID == id {
					out = append(out, photo)
				}
			}
		}
	}
	return out, nil
}

func (f *fakeProfiles) ListPhotoRatings(_ context.Context, userID string) ([]domain.PhotoRating, error) {
	return f.ratings[userID], nil
}

func (f *fakeProfiles) FetchInterestVector(_ context.Context, userID string) ([]float64, error) {
	return f.interests[userID], nil
}

func (f *fakeProfiles) ListInterestVectors(_ context.Context, _ int) ([][]float64, error) {
	return f.corpus, nil
}

type fakeExtractor struct {
	version      string
	vectors      map[string][]float64
	failPhotoIDs map[string]bool
	extractCalls int
}

var _ datasources.FeatureExtractor = (*fakeExtractor)(nil)

func newFakeExtractor(version string) *fakeExtractor {
	return &fakeExtractor{
		version:      version,
		vectors:      map[string][]float64{},
		failPhotoIDs: map[string]bool{},
	}
}

func (f *fakeExtractor) Extract(_ context.Context, photo domain.Photo) ([]float64, error) {
	f.extractCalls++
	if f.failPhotoIDs[photo.ID] {
		return nil, &domain.ExtractionError{PhotoID: photo.ID, Err: fmt.Errorf("decode failure")}
	}
	vector, ok := f.vectors[photo.ID]
	if !ok {
		return nil, &domain.ExtractionError{PhotoID: photo.ID, Err: fmt.Errorf("unknown photo")}
	}
	return vector, nil
}

func (f *fakeExtractor) ExtractBatch(ctx context.Context, photos []domain.Photo) ([][]float64, []domain.Photo, error) {
	var vectors [][]float64
	var extracted []domain.Photo
	for _, photo := range photos {
		vector, err := f.Extract(ctx, photo)
		if err != nil {
			continue
		}
		vectors = append(vectors, vector)
		extracted = append(extracted, photo)
	}
	return vectors, extracted, nil
}

func (f *fakeExtractor) Version() string {
	return f.version
}

type fakeVectorWriter struct {
	stored map[string][]float64
}

var _ datasources.PhotoVectorWriter = (*fakeVectorWriter)(nil)

func newFakeVectorWriter() *fakeVectorWriter {
	return &fakeVectorWriter{stored: map[string][]float64{}}
}

func (f *fakeVectorWriter) StorePhotoFeatureVector(_ context.Context, photoID string, vector []float64, _ string) error {
	f.stored[photoID] = vector
	return nil
}

type fakeRetrainStatus struct {
	due map[string]time.Time
}

var _ datasources.RetrainStatusRepository = (*fakeRetrainStatus)(nil)

func newFakeRetrainStatus() *fakeRetrainStatus {
	return &fakeRetrainStatus{due: map[string]time.Time{}}
}

func (f *fakeRetrainStatus) MarkRetrainDue(_ context.Context, userID string, at time.Time) error {
	f.due[userID] = at
	return nil
}

func (f *fakeRetrainStatus) ClearRetrainDue(_ context.Context, userID string) error {
	delete(f.due, userID)
	return nil
}

func (f *fakeRetrainStatus) ListRetrainDueUsers(_ context.Context, limit int) ([]string, error) {
	var out []string
	for id := range f.due {
		if len(out) == limit {
			break
		}
		out = append(out, id)
	}
	return out, nil
}

type fakeRejections struct {
	rejectedPairs map[string]bool
	recorded      []string
}

var _ datasources.RejectionChecker = (*fakeRejections)(nil)
var _ datasources.RejectionRecorder = (*fakeRejections)(nil)

func newFakeRejections() *fakeRejections {
	return &fakeRejections{rejectedPairs: map[string]bool{}}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (f *fakeRejections) RejectedSince(_ context.Context, userID, candidateID string, _ time.Time) (bool, error) {
	return f.rejectedPairs[pairKey(userID, candidateID)], nil
}

func (f *fakeRejections) RecordRejection(_ context.Context, userID, targetID string, _ time.Time) error {
	f.rejectedPairs[pairKey(userID, targetID)] = true
	f.recorded = append(f.recorded, pairKey(userID, targetID))
	return nil
}

type fakeMatchRepo struct {
	mu           sync.Mutex
	records      []domain.MatchRecord
	matchedSince map[string][]string
}

var _ datasources.MatchRepository = (*fakeMatchRepo)(nil)

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matchedSince: map[string][]string{}}
}

func (f *fakeMatchRepo) CreateMatchRecords(_ context.Context, records []domain.MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeMatchRepo) ListActiveMatches(_ context.Context, userID string, now time.Time) ([]domain.MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.MatchRecord
	for _, rec := range f.records {
		if rec.UserID == userID && rec.Active(now) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) ListMatchedCandidateIDs(_ context.Context, userID string, _ time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.matchedSince[userID], nil
}

type fakeGenerationStatus struct {
	mu        sync.Mutex
	due       []string
	generated map[string]time.Time
}

var _ datasources.GenerationStatusRepository = (*fakeGenerationStatus)(nil)

func newFakeGenerationStatus(due ...string) *fakeGenerationStatus {
	return &fakeGenerationStatus{due: due, generated: map[string]time.Time{}}
}

func (f *fakeGenerationStatus) ListUsersDueForGeneration(_ context.Context, _ time.Time, limit int) ([]string, error) {
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeGenerationStatus) MarkGenerated(_ context.Context, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generated[userID] = at
	return nil
}

// storeFittedModel fits a reference preference model and stores its
// artifact for the user, so commands under test can load it back.
func storeFittedModel(t *testing.T, store datasources.ModelStore, userID, extractorVersion string) {
	t.Helper()

	features := [][]float64{
		{1, 0, 0, 0},
		{3, 0, 0, 0},
		{5, 0, 0, 0},
		{2, 0, 0, 0},
		{4, 0, 0, 0},
	}
	ratings := []float64{1, 3, 5, 2, 4}

	model := domain.NewPreferenceModel(extractorVersion)
	require.NoError(t, model.Fit(features, ratings, nil))

	var buf bytes.Buffer
	require.NoError(t, model.Encode(&buf))
	require.NoError(t, store.PutModel(context.Background(), userID, buf.Bytes()))
}
