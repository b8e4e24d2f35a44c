package domain

import (
	"context"
	"time"
)

// DefaultPlaylistTitle is the title given to playlists created without one.
const DefaultPlaylistTitle = "New Playlist"

// Playlist is an ordered, owned collection of tracks.
type Playlist struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Title     string    `json:"title"`
	ImagePath string    `json:"imagePath"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ArtistSummary is the short form of the account that authored a track.
type ArtistSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Track is a single piece of media. Tracks are shared by playlists, never owned.
type Track struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Artist          ArtistSummary `json:"artist"`
	DurationSeconds int           `json:"durationSeconds"`
	ImagePath       string        `json:"imagePath"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// PlaylistTrack associates a track with a playlist. The pair
// (PlaylistID, TrackID) is its identity.
type PlaylistTrack struct {
	PlaylistID int64     `json:"playlistId"`
	TrackID    int64     `json:"trackId"`
	AddedAt    time.Time `json:"addedAt"`
	Position   *int      `json:"position"`
}

// PlaylistTrackEntry is a PlaylistTrack joined with its track.
type PlaylistTrackEntry struct {
	PlaylistID int64
	Track      Track
	AddedAt    time.Time
	Position   *int
}

// PlaylistRepository is the port for playlist persistence.
// GetPlaylist returns (nil, nil) when the playlist does not exist.
type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, p *Playlist) (*Playlist, error)
	GetPlaylist(ctx context.Context, id int64) (*Playlist, error)
	ListPlaylists(ctx context.Context, titleContains string) ([]Playlist, error)
	UpdatePlaylist(ctx context.Context, p *Playlist) (*Playlist, error)
	DeletePlaylist(ctx context.Context, id int64) (bool, error)
}

// TrackRepository is the port for track persistence.
// GetTrack returns (nil, nil) when the track does not exist.
type TrackRepository interface {
	CreateTrack(ctx context.Context, t *Track) (*Track, error)
	GetTrack(ctx context.Context, id int64) (*Track, error)
	ListTracks(ctx context.Context) ([]Track, error)
}

// PlaylistTrackRepository is the port for the playlist/track association.
//
// AddPlaylistTrack fails with ErrDuplicate when the pair exists, ErrPositionTaken
// when the position is used by another track of the playlist and ErrNotFound when
// either side is missing. RemovePlaylistTrack ignores absent pairs.
// ListPlaylistTracks returns entries in no particular order.
type PlaylistTrackRepository interface {
	AddPlaylistTrack(ctx context.Context, pt PlaylistTrack) (*PlaylistTrack, error)
	RemovePlaylistTrack(ctx context.Context, playlistID, trackID int64) error
	ListPlaylistTracks(ctx context.Context, playlistID int64) ([]PlaylistTrackEntry, error)
}
