// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"musify/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu             sync.Mutex
	accounts       []domain.Account
	playlists      []domain.Playlist
	tracks         []storedTrack
	playlistTracks []domain.PlaylistTrack

	accountIDCounter  int64
	playlistIDCounter int64
	trackIDCounter    int64
}

// storedTrack keeps the artist by id; the username is resolved on read.
type storedTrack struct {
	track    domain.Track
	artistID int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.AccountRepository = (*DB)(nil)
var _ domain.PlaylistRepository = (*DB)(nil)
var _ domain.TrackRepository = (*DB)(nil)
var _ domain.PlaylistTrackRepository = (*DB)(nil)

// --- AccountRepository ---

// FindByID returns the account with id.
func (db *DB) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if i := db.accountIndex(id); i >= 0 {
		a := db.accounts[i]
		return &a, nil
	}
	return nil, nil
}

// FindByUsername returns the account with username.
func (db *DB) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, a := range db.accounts {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, nil
}

// ExistsByUsername reports whether username is taken.
func (db *DB) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	a, err := db.FindByUsername(ctx, username)
	return a != nil, err
}

// Save inserts or updates an account.
func (db *DB) Save(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, other := range db.accounts {
		if other.Username == a.Username && other.ID != a.ID {
			return nil, fmt.Errorf("%w: username %q", domain.ErrConflict, a.Username)
		}
	}

	saved := *a
	if saved.ID == 0 {
		db.accountIDCounter++
		saved.ID = db.accountIDCounter
		db.accounts = append(db.accounts, saved)
		return &saved, nil
	}

	i := db.accountIndex(saved.ID)
	if i < 0 {
		return nil, fmt.Errorf("%w: account %d", domain.ErrNotFound, saved.ID)
	}
	saved.CreatedAt = db.accounts[i].CreatedAt
	db.accounts[i] = saved
	return &saved, nil
}

// DeleteByID removes an account, the playlists it owns and the tracks it
// authored. Missing accounts are ignored.
func (db *DB) DeleteByID(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.accounts = slices.DeleteFunc(db.accounts, func(a domain.Account) bool { return a.ID == id })

	var goneTracks []int64
	db.tracks = slices.DeleteFunc(db.tracks, func(t storedTrack) bool {
		if t.artistID == id {
			goneTracks = append(goneTracks, t.track.ID)
			return true
		}
		return false
	})
	var gonePlaylists []int64
	db.playlists = slices.DeleteFunc(db.playlists, func(p domain.Playlist) bool {
		if p.OwnerID == id {
			gonePlaylists = append(gonePlaylists, p.ID)
			return true
		}
		return false
	})
	db.playlistTracks = slices.DeleteFunc(db.playlistTracks, func(pt domain.PlaylistTrack) bool {
		return slices.Contains(gonePlaylists, pt.PlaylistID) || slices.Contains(goneTracks, pt.TrackID)
	})
	return nil
}

// ListAccounts returns all accounts ordered by id.
func (db *DB) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return slices.Clone(db.accounts), nil
}

func (db *DB) accountIndex(id int64) int {
	return slices.IndexFunc(db.accounts, func(a domain.Account) bool { return a.ID == id })
}

// --- PlaylistRepository ---

// CreatePlaylist stores a new playlist.
func (db *DB) CreatePlaylist(ctx context.Context, p *domain.Playlist) (*domain.Playlist, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.accountIndex(p.OwnerID) < 0 {
		return nil, fmt.Errorf("%w: account %d", domain.ErrNotFound, p.OwnerID)
	}
	db.playlistIDCounter++
	created := *p
	created.ID = db.playlistIDCounter
	db.playlists = append(db.playlists, created)
	return &created, nil
}

// GetPlaylist returns the playlist with id.
func (db *DB) GetPlaylist(ctx context.Context, id int64) (*domain.Playlist, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if i := db.playlistIndex(id); i >= 0 {
		p := db.playlists[i]
		return &p, nil
	}
	return nil, nil
}

// ListPlaylists returns the playlists whose title contains titleContains,
// ignoring case. An empty filter matches every playlist.
func (db *DB) ListPlaylists(ctx context.Context, titleContains string) ([]domain.Playlist, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	needle := strings.ToLower(titleContains)
	result := []domain.Playlist{}
	for _, p := range db.playlists {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			result = append(result, p)
		}
	}
	return result, nil
}

// UpdatePlaylist rewrites title, image and updated_at of a playlist.
func (db *DB) UpdatePlaylist(ctx context.Context, p *domain.Playlist) (*domain.Playlist, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.playlistIndex(p.ID)
	if i < 0 {
		return nil, fmt.Errorf("%w: playlist %d", domain.ErrNotFound, p.ID)
	}
	db.playlists[i].Title = p.Title
	db.playlists[i].ImagePath = p.ImagePath
	db.playlists[i].UpdatedAt = p.UpdatedAt
	updated := db.playlists[i]
	return &updated, nil
}

// DeletePlaylist removes a playlist and its track associations.
func (db *DB) DeletePlaylist(ctx context.Context, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.playlistIndex(id)
	if i < 0 {
		return false, nil
	}
	db.playlists = slices.Delete(db.playlists, i, i+1)
	db.playlistTracks = slices.DeleteFunc(db.playlistTracks, func(pt domain.PlaylistTrack) bool {
		return pt.PlaylistID == id
	})
	return true, nil
}

func (db *DB) playlistIndex(id int64) int {
	return slices.IndexFunc(db.playlists, func(p domain.Playlist) bool { return p.ID == id })
}

// --- TrackRepository ---

// CreateTrack stores a new track authored by t.Artist.ID.
func (db *DB) CreateTrack(ctx context.Context, t *domain.Track) (*domain.Track, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.accountIndex(t.Artist.ID) < 0 {
		return nil, fmt.Errorf("%w: account %d", domain.ErrNotFound, t.Artist.ID)
	}
	db.trackIDCounter++
	created := *t
	created.ID = db.trackIDCounter
	db.tracks = append(db.tracks, storedTrack{track: created, artistID: t.Artist.ID})
	return db.resolveTrack(db.tracks[len(db.tracks)-1]), nil
}

// GetTrack returns the track with id.
func (db *DB) GetTrack(ctx context.Context, id int64) (*domain.Track, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if i := db.trackIndex(id); i >= 0 {
		return db.resolveTrack(db.tracks[i]), nil
	}
	return nil, nil
}

// ListTracks returns all tracks ordered by id.
func (db *DB) ListTracks(ctx context.Context) ([]domain.Track, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Track, 0, len(db.tracks))
	for _, t := range db.tracks {
		result = append(result, *db.resolveTrack(t))
	}
	return result, nil
}

func (db *DB) trackIndex(id int64) int {
	return slices.IndexFunc(db.tracks, func(t storedTrack) bool { return t.track.ID == id })
}

func (db *DB) resolveTrack(t storedTrack) *domain.Track {
	track := t.track
	track.Artist = domain.ArtistSummary{ID: t.artistID}
	if i := db.accountIndex(t.artistID); i >= 0 {
		track.Artist.Username = db.accounts[i].Username
	}
	return &track
}

// --- PlaylistTrackRepository ---

// AddPlaylistTrack stores a playlist/track association.
func (db *DB) AddPlaylistTrack(ctx context.Context, pt domain.PlaylistTrack) (*domain.PlaylistTrack, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.playlistIndex(pt.PlaylistID) < 0 {
		return nil, fmt.Errorf("%w: playlist %d", domain.ErrNotFound, pt.PlaylistID)
	}
	if db.trackIndex(pt.TrackID) < 0 {
		return nil, fmt.Errorf("%w: track %d", domain.ErrNotFound, pt.TrackID)
	}
	for _, existing := range db.playlistTracks {
		if existing.PlaylistID != pt.PlaylistID {
			continue
		}
		if existing.TrackID == pt.TrackID {
			return nil, fmt.Errorf("%w: track %d in playlist %d", domain.ErrDuplicate, pt.TrackID, pt.PlaylistID)
		}
		if pt.Position != nil && existing.Position != nil && *existing.Position == *pt.Position {
			return nil, fmt.Errorf("%w: position %d in playlist %d", domain.ErrPositionTaken, *pt.Position, pt.PlaylistID)
		}
	}

	pt.Position = clonePosition(pt.Position)
	db.playlistTracks = append(db.playlistTracks, pt)
	pt.Position = clonePosition(pt.Position)
	return &pt, nil
}

// RemovePlaylistTrack deletes an association if it exists.
func (db *DB) RemovePlaylistTrack(ctx context.Context, playlistID, trackID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.playlistTracks = slices.DeleteFunc(db.playlistTracks, func(pt domain.PlaylistTrack) bool {
		return pt.PlaylistID == playlistID && pt.TrackID == trackID
	})
	return nil
}

// ListPlaylistTracks returns the associations of a playlist joined with
// their tracks, in insertion order.
func (db *DB) ListPlaylistTracks(ctx context.Context, playlistID int64) ([]domain.PlaylistTrackEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := []domain.PlaylistTrackEntry{}
	for _, pt := range db.playlistTracks {
		if pt.PlaylistID != playlistID {
			continue
		}
		i := db.trackIndex(pt.TrackID)
		if i < 0 {
			continue
		}
		result = append(result, domain.PlaylistTrackEntry{
			PlaylistID: pt.PlaylistID,
			Track:      *db.resolveTrack(db.tracks[i]),
			AddedAt:    pt.AddedAt,
			Position:   clonePosition(pt.Position),
		})
	}
	return result, nil
}

func clonePosition(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

