package adapthttp

import (
	"time"

	"musify/internal/domain"
)

const (
	playlistImagePrefix = "/private/images/playlists/"
	trackImagePrefix    = "/private/images/tracks/"
)

type credentialsRequest struct {
	Username string `json:"username" jsonschema:"minLength=1,maxLength=64"`
	Password string `json:"password" jsonschema:"minLength=1,maxLength=256"`
}

type playlistCreateRequest struct {
	Title string `json:"title,omitempty" jsonschema:"maxLength=200"`
}

type playlistUpdateRequest struct {
	Title     string  `json:"title,omitempty" jsonschema:"maxLength=200"`
	ImagePath *string `json:"imagePath,omitempty" jsonschema:"maxLength=512"`
}

type addTrackRequest struct {
	TrackID  int64 `json:"trackId" jsonschema:"minimum=1"`
	Position *int  `json:"position,omitempty" jsonschema:"minimum=0,maximum=2147483647"`
}

type trackCreateRequest struct {
	Title           string `json:"title" jsonschema:"minLength=1,maxLength=200"`
	DurationSeconds int    `json:"durationSeconds" jsonschema:"minimum=1,maximum=2147483647"`
	ImagePath       string `json:"imagePath,omitempty" jsonschema:"maxLength=512"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type meResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type accountResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type playlistResponse struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type artistResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type trackResponse struct {
	ID              int64          `json:"id"`
	Title           string         `json:"title"`
	Artist          artistResponse `json:"artist"`
	DurationSeconds int            `json:"durationSeconds"`
	ImageURL        string         `json:"imageUrl"`
}

type playlistTrackResponse struct {
	PlaylistID int64     `json:"playlistId"`
	TrackID    int64     `json:"trackId"`
	AddedAt    time.Time `json:"addedAt"`
	Position   *int      `json:"position"`
}

type playlistEntryResponse struct {
	trackResponse
	AddedAt  time.Time `json:"addedAt"`
	Position *int      `json:"position"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func imageURL(prefix, p string) string {
	if p == "" {
		return ""
	}
	return prefix + p
}

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{ID: a.ID, Username: a.Username, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}

func toPlaylistResponse(p domain.Playlist) playlistResponse {
	return playlistResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Title:     p.Title,
		ImageURL:  imageURL(playlistImagePrefix, p.ImagePath),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toTrackResponse(t domain.Track) trackResponse {
	return trackResponse{
		ID:              t.ID,
		Title:           t.Title,
		Artist:          artistResponse{ID: t.Artist.ID, Username: t.Artist.Username},
		DurationSeconds: t.DurationSeconds,
		ImageURL:        imageURL(trackImagePrefix, t.ImagePath),
	}
}

func toPlaylistEntryResponse(e domain.PlaylistTrackEntry) playlistEntryResponse {
	return playlistEntryResponse{
		trackResponse: toTrackResponse(e.Track),
		AddedAt:       e.AddedAt,
		Position:      e.Position,
	}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
