package postgres

import (
	"context"
	"database/sql"

	"musify/internal/domain"
)

var _ domain.PlaylistTrackRepository = (*DB)(nil)

// AddPlaylistTrack inserts an association. The primary key and the partial
// unique index on (playlist_id, position) decide duplicates and position
// collisions, so concurrent adds cannot both succeed.
func (d *DB) AddPlaylistTrack(ctx context.Context, pt domain.PlaylistTrack) (*domain.PlaylistTrack, error) {
	var position sql.NullInt64
	if pt.Position != nil {
		position = sql.NullInt64{Int64: int64(*pt.Position), Valid: true}
	}
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO playlist_tracks (playlist_id, track_id, added_at, position) VALUES ($1, $2, $3, $4)",
		pt.PlaylistID, pt.TrackID, pt.AddedAt, position,
	)
	if err != nil {
		return nil, mapError(err, "insert playlist track")
	}
	return &pt, nil
}

// RemovePlaylistTrack deletes an association if present.
func (d *DB) RemovePlaylistTrack(ctx context.Context, playlistID, trackID int64) error {
	_, err := d.sql.ExecContext(ctx,
		"DELETE FROM playlist_tracks WHERE playlist_id = $1 AND track_id = $2",
		playlistID, trackID,
	)
	return mapError(err, "delete playlist track")
}

// ListPlaylistTracks returns the associations of a playlist with their
// tracks. Ordering is applied by the caller.
func (d *DB) ListPlaylistTracks(ctx context.Context, playlistID int64) ([]domain.PlaylistTrackEntry, error) {
	rows, err := d.sql.QueryContext(ctx, `
SELECT pt.playlist_id, pt.added_at, pt.position,
       t.id, t.title, t.artist_id, a.username, t.duration_seconds, t.image_path, t.created_at
FROM playlist_tracks pt
JOIN tracks t ON t.id = pt.track_id
JOIN accounts a ON a.id = t.artist_id
WHERE pt.playlist_id = $1`, playlistID)
	if err != nil {
		return nil, mapError(err, "list playlist tracks")
	}
	defer rows.Close()

	out := []domain.PlaylistTrackEntry{}
	for rows.Next() {
		var (
			e        domain.PlaylistTrackEntry
			position sql.NullInt64
		)
		if err := rows.Scan(&e.PlaylistID, &e.AddedAt, &position,
			&e.Track.ID, &e.Track.Title, &e.Track.Artist.ID, &e.Track.Artist.Username,
			&e.Track.DurationSeconds, &e.Track.ImagePath, &e.Track.CreatedAt,
		); err != nil {
			return nil, mapError(err, "list playlist tracks")
		}
		if position.Valid {
			p := int(position.Int64)
			e.Position = &p
		}
		out = append(out, e)
	}
	return out, mapError(rows.Err(), "list playlist tracks")
}
