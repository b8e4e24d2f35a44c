package app_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"musify/internal/auth"
	"musify/internal/domain"
)

var testSecret = []byte("app-tests-secret-0123456789abcdef")

type mockAccountRepo struct {
	findByIDFn       func(ctx context.Context, id int64) (*domain.Account, error)
	findByUsernameFn func(ctx context.Context, username string) (*domain.Account, error)
	existsFn         func(ctx context.Context, username string) (bool, error)
	saveFn           func(ctx context.Context, a *domain.Account) (*domain.Account, error)
	deleteFn         func(ctx context.Context, id int64) error
	listFn           func(ctx context.Context) ([]domain.Account, error)
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockAccountRepo) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockAccountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, username)
	}
	return false, nil
}

func (m *mockAccountRepo) Save(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, a)
	}
	saved := *a
	if saved.ID == 0 {
		saved.ID = 1
	}
	return &saved, nil
}

func (m *mockAccountRepo) DeleteByID(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockAccountRepo) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockPlaylistRepo struct {
	createFn func(ctx context.Context, p *domain.Playlist) (*domain.Playlist, error)
	getFn    func(ctx context.Context, id int64) (*domain.Playlist, error)
	listFn   func(ctx context.Context, titleContains string) ([]domain.Playlist, error)
	updateFn func(ctx context.Context, p *domain.Playlist) (*domain.Playlist, error)
	deleteFn func(ctx context.Context, id int64) (bool, error)
}

func (m *mockPlaylistRepo) CreatePlaylist(ctx context.Context, p *domain.Playlist) (*domain.Playlist, error) {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	created := *p
	created.ID = 1
	return &created, nil
}

func (m *mockPlaylistRepo) GetPlaylist(ctx context.Context, id int64) (*domain.Playlist, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPlaylistRepo) ListPlaylists(ctx context.Context, titleContains string) ([]domain.Playlist, error) {
	if m.listFn != nil {
		return m.listFn(ctx, titleContains)
	}
	return nil, nil
}

func (m *mockPlaylistRepo) UpdatePlaylist(ctx context.Context, p *domain.Playlist) (*domain.Playlist, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return p, nil
}

func (m *mockPlaylistRepo) DeletePlaylist(ctx context.Context, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

type mockTrackRepo struct {
	createFn func(ctx context.Context, t *domain.Track) (*domain.Track, error)
	getFn    func(ctx context.Context, id int64) (*domain.Track, error)
	listFn   func(ctx context.Context) ([]domain.Track, error)
}

func (m *mockTrackRepo) CreateTrack(ctx context.Context, t *domain.Track) (*domain.Track, error) {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	created := *t
	created.ID = 1
	return &created, nil
}

func (m *mockTrackRepo) GetTrack(ctx context.Context, id int64) (*domain.Track, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTrackRepo) ListTracks(ctx context.Context) ([]domain.Track, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockEntryRepo struct {
	addFn    func(ctx context.Context, pt domain.PlaylistTrack) (*domain.PlaylistTrack, error)
	removeFn func(ctx context.Context, playlistID, trackID int64) error
	listFn   func(ctx context.Context, playlistID int64) ([]domain.PlaylistTrackEntry, error)
}

func (m *mockEntryRepo) AddPlaylistTrack(ctx context.Context, pt domain.PlaylistTrack) (*domain.PlaylistTrack, error) {
	if m.addFn != nil {
		return m.addFn(ctx, pt)
	}
	return &pt, nil
}

func (m *mockEntryRepo) RemovePlaylistTrack(ctx context.Context, playlistID, trackID int64) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, playlistID, trackID)
	}
	return nil
}

func (m *mockEntryRepo) ListPlaylistTracks(ctx context.Context, playlistID int64) ([]domain.PlaylistTrackEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, playlistID)
	}
	return nil, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func newHasher(t *testing.T) *auth.Hasher {
	t.Helper()
	h, err := auth.NewHasher(auth.AlgorithmBcrypt, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func newCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	c, err := auth.NewTokenCodec(testSecret)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return c
}

func mustHash(t *testing.T, h *auth.Hasher, password string) string {
	t.Helper()
	digest, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	return digest
}

func intPtr(v int) *int { return &v }

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
