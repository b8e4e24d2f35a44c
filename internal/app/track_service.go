package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"musify/internal/domain"
)

// TrackService manages the track catalogue.
type TrackService struct {
	tracks domain.TrackRepository
}

// NewTrackService creates a TrackService.
func NewTrackService(tracks domain.TrackRepository) *TrackService {
	return &TrackService{tracks: tracks}
}

// Create stores a track authored by p.
func (s *TrackService) Create(ctx context.Context, p domain.Principal, title string, durationSeconds int, imagePath string) (*domain.Track, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if durationSeconds <= 0 || durationSeconds > math.MaxInt32 {
		return nil, fmt.Errorf("%w: durationSeconds must be within [1, %d]", domain.ErrInvalidInput, math.MaxInt32)
	}
	return s.tracks.CreateTrack(ctx, &domain.Track{
		Title:           title,
		Artist:          domain.ArtistSummary{ID: p.AccountID, Username: p.Username},
		DurationSeconds: durationSeconds,
		ImagePath:       imagePath,
		CreatedAt:       time.Now().UTC(),
	})
}

// Get returns the track with id or domain.ErrNotFound.
func (s *TrackService) Get(ctx context.Context, id int64) (*domain.Track, error) {
	track, err := s.tracks.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, fmt.Errorf("%w: track %d", domain.ErrNotFound, id)
	}
	return track, nil
}

// List returns every track.
func (s *TrackService) List(ctx context.Context) ([]domain.Track, error) {
	return s.tracks.ListTracks(ctx)
}
