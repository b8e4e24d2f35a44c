package postgres

import (
	"context"
	"database/sql"
	"errors"

	"musify/internal/domain"
)

var _ domain.TrackRepository = (*DB)(nil)

const trackSelect = `SELECT t.id, t.title, t.artist_id, a.username, t.duration_seconds, t.image_path, t.created_at
FROM tracks t JOIN accounts a ON a.id = t.artist_id`

func scanTrack(row interface{ Scan(...any) error }) (*domain.Track, error) {
	var t domain.Track
	if err := row.Scan(&t.ID, &t.Title, &t.Artist.ID, &t.Artist.Username, &t.DurationSeconds, &t.ImagePath, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTrack inserts a track authored by t.Artist.ID.
func (d *DB) CreateTrack(ctx context.Context, t *domain.Track) (*domain.Track, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO tracks (artist_id, title, duration_seconds, image_path, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		t.Artist.ID, t.Title, t.DurationSeconds, t.ImagePath, t.CreatedAt,
	).Scan(&id)
	if err != nil {
		return nil, mapError(err, "insert track")
	}
	created, err := d.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		// The artist was deleted between the insert and the read.
		return nil, domain.ErrNotFound
	}
	return created, nil
}

// GetTrack retrieves a track with its artist.
func (d *DB) GetTrack(ctx context.Context, id int64) (*domain.Track, error) {
	t, err := scanTrack(d.sql.QueryRowContext(ctx, trackSelect+" WHERE t.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, mapError(err, "get track")
}

// ListTracks returns all tracks ordered by id.
func (d *DB) ListTracks(ctx context.Context) ([]domain.Track, error) {
	rows, err := d.sql.QueryContext(ctx, trackSelect+" ORDER BY t.id")
	if err != nil {
		return nil, mapError(err, "list tracks")
	}
	defer rows.Close()

	out := []domain.Track{}
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, mapError(err, "list tracks")
		}
		out = append(out, *t)
	}
	return out, mapError(rows.Err(), "list tracks")
}
