package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"musify/internal/domain"
)

var _ domain.PlaylistRepository = (*DB)(nil)

const playlistColumns = "id, owner_id, title, image_path, created_at, updated_at"

func scanPlaylist(row interface{ Scan(...any) error }) (*domain.Playlist, error) {
	var p domain.Playlist
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlaylist inserts a playlist.
func (d *DB) CreatePlaylist(ctx context.Context, p *domain.Playlist) (*domain.Playlist, error) {
	created, err := scanPlaylist(d.sql.QueryRowContext(ctx,
		"INSERT INTO playlists (owner_id, title, image_path, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING "+playlistColumns,
		p.OwnerID, p.Title, p.ImagePath, p.CreatedAt, p.UpdatedAt,
	))
	if err != nil {
		return nil, mapError(err, "insert playlist")
	}
	return created, nil
}

// GetPlaylist retrieves a playlist by ID.
func (d *DB) GetPlaylist(ctx context.Context, id int64) (*domain.Playlist, error) {
	p, err := scanPlaylist(d.sql.QueryRowContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, mapError(err, "get playlist")
}

// ListPlaylists returns playlists whose title contains titleContains,
// ignoring case, ordered by id.
func (d *DB) ListPlaylists(ctx context.Context, titleContains string) ([]domain.Playlist, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+playlistColumns+" FROM playlists WHERE strpos(lower(title), lower($1)) > 0 ORDER BY id",
		titleContains,
	)
	if err != nil {
		return nil, mapError(err, "list playlists")
	}
	defer rows.Close()

	out := []domain.Playlist{}
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, mapError(err, "list playlists")
		}
		out = append(out, *p)
	}
	return out, mapError(rows.Err(), "list playlists")
}

// UpdatePlaylist rewrites title, image path and updated_at.
func (d *DB) UpdatePlaylist(ctx context.Context, p *domain.Playlist) (*domain.Playlist, error) {
	updated, err := scanPlaylist(d.sql.QueryRowContext(ctx,
		"UPDATE playlists SET title = $1, image_path = $2, updated_at = $3 WHERE id = $4 RETURNING "+playlistColumns,
		p.Title, p.ImagePath, p.UpdatedAt, p.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: playlist %d", domain.ErrNotFound, p.ID)
	}
	if err != nil {
		return nil, mapError(err, "update playlist")
	}
	return updated, nil
}

// DeletePlaylist deletes a playlist; its playlist_tracks rows cascade.
func (d *DB) DeletePlaylist(ctx context.Context, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM playlists WHERE id = $1", id)
	if err != nil {
		return false, mapError(err, "delete playlist")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError(err, "delete playlist")
	}
	return n > 0, nil
}
