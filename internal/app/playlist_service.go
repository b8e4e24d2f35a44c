package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"musify/internal/domain"
)

// PlaylistUpdate holds the changes applied by PlaylistService.Update.
// A blank Title keeps the current title and a nil ImagePath keeps the
// current image.
type PlaylistUpdate struct {
	Title     string
	ImagePath *string
}

// PlaylistService manages playlists and their ordered track associations.
type PlaylistService struct {
	playlists domain.PlaylistRepository
	tracks    domain.TrackRepository
	entries   domain.PlaylistTrackRepository
	logger    *log.Logger
}

// NewPlaylistService creates a PlaylistService.
func NewPlaylistService(playlists domain.PlaylistRepository, tracks domain.TrackRepository, entries domain.PlaylistTrackRepository, logger *log.Logger) *PlaylistService {
	return &PlaylistService{
		playlists: playlists,
		tracks:    tracks,
		entries:   entries,
		logger:    logger,
	}
}

// Create stores a playlist owned by p. A blank title becomes
// domain.DefaultPlaylistTitle.
func (s *PlaylistService) Create(ctx context.Context, p domain.Principal, title string) (*domain.Playlist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.DefaultPlaylistTitle
	}
	now := time.Now().UTC()
	playlist, err := s.playlists.CreatePlaylist(ctx, &domain.Playlist{
		OwnerID:   p.AccountID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("playlist created", "playlist_id", playlist.ID, "owner_id", p.AccountID)
	return playlist, nil
}

// List returns all playlists, or those whose title contains titleContains
// ignoring case when it is not blank.
func (s *PlaylistService) List(ctx context.Context, titleContains string) ([]domain.Playlist, error) {
	return s.playlists.ListPlaylists(ctx, strings.TrimSpace(titleContains))
}

// Get returns the playlist with id or domain.ErrNotFound.
func (s *PlaylistService) Get(ctx context.Context, id int64) (*domain.Playlist, error) {
	playlist, err := s.playlists.GetPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, fmt.Errorf("%w: playlist %d", domain.ErrNotFound, id)
	}
	return playlist, nil
}

// Update applies u to a playlist owned by p.
func (s *PlaylistService) Update(ctx context.Context, p domain.Principal, id int64, u PlaylistUpdate) (*domain.Playlist, error) {
	playlist, err := s.owned(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if title := strings.TrimSpace(u.Title); title != "" {
		playlist.Title = title
	}
	if u.ImagePath != nil {
		playlist.ImagePath = *u.ImagePath
	}
	playlist.UpdatedAt = time.Now().UTC()
	return s.playlists.UpdatePlaylist(ctx, playlist)
}

// Delete removes a playlist owned by p along with its track associations.
func (s *PlaylistService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if _, err := s.owned(ctx, p, id); err != nil {
		return err
	}
	deleted, err := s.playlists.DeletePlaylist(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: playlist %d", domain.ErrNotFound, id)
	}
	s.logger.Info("playlist deleted", "playlist_id", id)
	return nil
}

// AddTrack associates a track with a playlist owned by p, optionally at
// position. It fails with domain.ErrNotFound for an unknown playlist or
// track, domain.ErrDuplicate when the track is already in the playlist and
// domain.ErrPositionTaken when another track holds position.
func (s *PlaylistService) AddTrack(ctx context.Context, p domain.Principal, playlistID, trackID int64, position *int) (_ *domain.PlaylistTrack, err error) {
	ctx, span := tracer.Start(ctx, "playlist.add_track", trace.WithAttributes(
		attribute.Int64("playlist.id", playlistID),
		attribute.Int64("track.id", trackID),
	))
	defer func() { endSpan(span, err) }()

	if position != nil && (*position < 0 || *position > math.MaxInt32) {
		return nil, fmt.Errorf("%w: position must be within [0, %d]", domain.ErrInvalidInput, math.MaxInt32)
	}
	if _, err = s.owned(ctx, p, playlistID); err != nil {
		return nil, err
	}
	track, err := s.tracks.GetTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, fmt.Errorf("%w: track %d", domain.ErrNotFound, trackID)
	}

	return s.entries.AddPlaylistTrack(ctx, domain.PlaylistTrack{
		PlaylistID: playlistID,
		TrackID:    trackID,
		AddedAt:    time.Now().UTC(),
		Position:   position,
	})
}

// RemoveTrack detaches a track from a playlist owned by p. Removing a track
// that is not in the playlist succeeds without changes.
func (s *PlaylistService) RemoveTrack(ctx context.Context, p domain.Principal, playlistID, trackID int64) (err error) {
	ctx, span := tracer.Start(ctx, "playlist.remove_track", trace.WithAttributes(
		attribute.Int64("playlist.id", playlistID),
		attribute.Int64("track.id", trackID),
	))
	defer func() { endSpan(span, err) }()

	if _, err = s.owned(ctx, p, playlistID); err != nil {
		return err
	}
	return s.entries.RemovePlaylistTrack(ctx, playlistID, trackID)
}

// ListTracks returns the tracks of a playlist ordered by sortBy and
// direction. Unknown values fall back to id and ascending.
func (s *PlaylistService) ListTracks(ctx context.Context, playlistID int64, sortBy, direction string) (_ []domain.PlaylistTrackEntry, err error) {
	ctx, span := tracer.Start(ctx, "playlist.list_tracks", trace.WithAttributes(
		attribute.Int64("playlist.id", playlistID),
		attribute.String("sort.key", sortBy),
		attribute.String("sort.direction", direction),
	))
	defer func() { endSpan(span, err) }()

	if _, err = s.Get(ctx, playlistID); err != nil {
		return nil, err
	}
	entries, err := s.entries.ListPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.PlaylistTrackEntry{}
	}
	domain.SortEntries(entries, domain.ParseSortKey(sortBy), domain.ParseDirection(direction))
	return entries, nil
}

func (s *PlaylistService) owned(ctx context.Context, p domain.Principal, id int64) (*domain.Playlist, error) {
	playlist, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != p.AccountID {
		return nil, fmt.Errorf("%w: playlist %d", domain.ErrForbidden, id)
	}
	return playlist, nil
}
