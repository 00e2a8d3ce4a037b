package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/LeafGuard/internal/apperr"
	"github.com/atinyakov/LeafGuard/internal/models"
	"github.com/atinyakov/LeafGuard/internal/repository"
)

// fakeHistoryRepo implements HistoryRepository in memory.
type fakeHistoryRepo struct {
	records   []models.HistoryRecord
	nextID    int64
	clock     time.Time
	insertErr error
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeHistoryRepo) Insert(ctx context.Context, rec *models.HistoryRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	f.clock = f.clock.Add(time.Second)
	rec.ID = f.nextID
	rec.Timestamp = f.clock
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeHistoryRepo) ListByUser(ctx context.Context, userID int64) ([]models.HistoryRecord, error) {
	var out []models.HistoryRecord
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (f *fakeHistoryRepo) GetOwned(ctx context.Context, userID, id int64) (*models.HistoryRecord, error) {
	for _, r := range f.records {
		if r.ID == id && r.UserID == userID {
			cp := r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeHistoryRepo) DeleteOwned(ctx context.Context, userID, id int64) error {
	for i, r := range f.records {
		if r.ID == id && r.UserID == userID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeResolver implements UserResolver over a fixed user set.
type fakeResolver struct {
	users map[string]*models.User
}

func (f *fakeResolver) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

// fakeBlobs implements BlobStore in memory.
type fakeBlobs struct {
	saved     map[string][]byte
	removed   []string
	saveCount int
	removeErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{saved: make(map[string][]byte)}
}

func (f *fakeBlobs) Save(filename string, data []byte) (string, error) {
	f.saveCount++
	rel := fmt.Sprintf("blob%d_%s", f.saveCount, filename)
	f.saved[rel] = data
	return rel, nil
}

func (f *fakeBlobs) Remove(rel string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.saved, rel)
	f.removed = append(f.removed, rel)
	return nil
}

func historyFixture() (*HistoryService, *fakeHistoryRepo, *fakeBlobs) {
	repo := newFakeHistoryRepo()
	blobs := newFakeBlobs()
	resolver := &fakeResolver{users: map[string]*models.User{
		"alice": {ID: 1, Username: "alice"},
		"bob":   {ID: 2, Username: "bob"},
	}}
	svc := NewHistoryService(repo, resolver, blobs, zap.NewNop())
	return svc, repo, blobs
}

func TestHistoryCreateListRoundTrip(t *testing.T) {
	svc, _, _ := historyFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "leaf.jpg", []byte("img"), "spot", 0.92)
	require.NoError(t, err)

	records, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 1, "a created record appears exactly once")
	assert.Equal(t, "spot", records[0].DiseaseName)
	assert.Equal(t, 0.92, records[0].Confidence)
}

func TestHistoryList_NewestFirst(t *testing.T) {
	svc, _, _ := historyFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "first.jpg", []byte("a"), "Rust", 0.8)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "second.jpg", []byte("b"), "Brown spot", 0.7)
	require.NoError(t, err)

	records, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Brown spot", records[0].DiseaseName, "newest record first")
	assert.True(t, records[0].Timestamp.After(records[1].Timestamp))
}

func TestHistoryList_EmptyForNewUser(t *testing.T) {
	svc, _, _ := historyFixture()

	records, err := svc.List(context.Background(), "bob")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestHistoryCreate_UnknownUser(t *testing.T) {
	svc, _, blobs := historyFixture()

	_, err := svc.Create(context.Background(), "ghost", "leaf.jpg", []byte("img"), "Rust", 0.9)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Empty(t, blobs.saved, "no blob may be written for an unknown user")
}

func TestHistoryCreate_ConfidenceOutOfRange(t *testing.T) {
	svc, _, _ := historyFixture()

	for _, confidence := range []float64{-0.1, 1.5} {
		_, err := svc.Create(context.Background(), "alice", "leaf.jpg", []byte("img"), "Rust", confidence)
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	}
}

func TestHistoryCreate_InsertFailureLeavesOrphan(t *testing.T) {
	svc, repo, blobs := historyFixture()
	repo.insertErr = errors.New("insert failed")

	_, err := svc.Create(context.Background(), "alice", "leaf.jpg", []byte("img"), "Rust", 0.9)
	assert.Equal(t, apperr.Store, apperr.KindOf(err))
	assert.Len(t, blobs.saved, 1, "the blob stays behind for the orphan cleaner")
	assert.Empty(t, blobs.removed)
}

func TestHistoryDelete_OtherUsersRecord(t *testing.T) {
	svc, repo, _ := historyFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "leaf.jpg", []byte("img"), "Rust", 0.9)
	require.NoError(t, err)
	recordID := repo.records[0].ID

	err = svc.Delete(ctx, "bob", recordID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err), "foreign records look absent")
	assert.Len(t, repo.records, 1, "the record must stay intact")
}

func TestHistoryDelete_RemovesRowAndBlob(t *testing.T) {
	svc, repo, blobs := historyFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "leaf.jpg", []byte("img"), "Rust", 0.9)
	require.NoError(t, err)

	err = svc.Delete(ctx, "alice", repo.records[0].ID)
	require.NoError(t, err)
	assert.Empty(t, repo.records)
	assert.Len(t, blobs.removed, 1)
}

func TestHistoryDelete_BlobRemovalFailureIsNotFatal(t *testing.T) {
	svc, repo, blobs := historyFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "leaf.jpg", []byte("img"), "Rust", 0.9)
	require.NoError(t, err)
	blobs.removeErr = errors.New("disk gone")

	err = svc.Delete(ctx, "alice", repo.records[0].ID)
	assert.NoError(t, err, "row deletion is authoritative; blob removal is advisory")
	assert.Empty(t, repo.records)
}

func TestHistoryDelete_MissingRecord(t *testing.T) {
	svc, _, _ := historyFixture()

	err := svc.Delete(context.Background(), "alice", 42)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
