//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"musify/internal/adapter/postgres"
	"musify/internal/domain"
)

func setupDB(t *testing.T) *postgres.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("musify_test"),
		tcpostgres.WithUsername("musify"),
		tcpostgres.WithPassword("musify"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := postgres.NewMigrator(connStr)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	version, dirty, err := migrator.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)
	assert.False(t, dirty)
	require.NoError(t, migrator.Close())

	db, err := postgres.Open(ctx, connStr, postgres.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPostgres_Repositories(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	ada, err := db.Save(ctx, &domain.Account{Username: "ada", PasswordHash: "h1", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	bob, err := db.Save(ctx, &domain.Account{Username: "bob", PasswordHash: "h2", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	t.Run("accounts", func(t *testing.T) {
		_, err := db.Save(ctx, &domain.Account{Username: "ada", PasswordHash: "h", CreatedAt: now, UpdatedAt: now})
		assert.ErrorIs(t, err, domain.ErrConflict)

		exists, err := db.ExistsByUsername(ctx, "ADA")
		require.NoError(t, err)
		assert.False(t, exists, "usernames are case-sensitive")

		missing, err := db.FindByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, missing)

		renamed := *bob
		renamed.Username = "ada"
		_, err = db.Save(ctx, &renamed)
		assert.ErrorIs(t, err, domain.ErrConflict)
		got, err := db.FindByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", got.Username)
		assert.Equal(t, "h2", got.PasswordHash)
	})

	p1, err := db.CreatePlaylist(ctx, &domain.Playlist{OwnerID: ada.ID, Title: "Morning Jazz", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	zeta, err := db.CreateTrack(ctx, &domain.Track{Title: "Zeta", Artist: domain.ArtistSummary{ID: bob.ID}, DurationSeconds: 180, CreatedAt: now})
	require.NoError(t, err)
	alpha, err := db.CreateTrack(ctx, &domain.Track{Title: "Alpha", Artist: domain.ArtistSummary{ID: ada.ID}, DurationSeconds: 200, CreatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, "bob", zeta.Artist.Username)

	t.Run("playlist search ignores case", func(t *testing.T) {
		got, err := db.ListPlaylists(ctx, "jAzZ")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, p1.ID, got[0].ID)
	})

	t.Run("associations", func(t *testing.T) {
		two, one := 2, 1
		_, err := db.AddPlaylistTrack(ctx, domain.PlaylistTrack{PlaylistID: p1.ID, TrackID: zeta.ID, AddedAt: now, Position: &two})
		require.NoError(t, err)

		_, err = db.AddPlaylistTrack(ctx, domain.PlaylistTrack{PlaylistID: p1.ID, TrackID: zeta.ID, AddedAt: now})
		assert.ErrorIs(t, err, domain.ErrDuplicate)
		_, err = db.AddPlaylistTrack(ctx, domain.PlaylistTrack{PlaylistID: p1.ID, TrackID: alpha.ID, AddedAt: now, Position: &two})
		assert.ErrorIs(t, err, domain.ErrPositionTaken)
		_, err = db.AddPlaylistTrack(ctx, domain.PlaylistTrack{PlaylistID: p1.ID, TrackID: 9999, AddedAt: now})
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = db.AddPlaylistTrack(ctx, domain.PlaylistTrack{PlaylistID: p1.ID, TrackID: alpha.ID, AddedAt: now, Position: &one})
		require.NoError(t, err)

		entries, err := db.ListPlaylistTracks(ctx, p1.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		domain.SortEntries(entries, domain.SortByPosition, domain.Asc)
		assert.Equal(t, alpha.ID, entries[0].Track.ID)
		assert.Equal(t, zeta.ID, entries[1].Track.ID)
		assert.Equal(t, 2, *entries[1].Position)

		require.NoError(t, db.RemovePlaylistTrack(ctx, p1.ID, 9999))
		require.NoError(t, db.RemovePlaylistTrack(ctx, p1.ID, zeta.ID))
		entries, err = db.ListPlaylistTracks(ctx, p1.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("concurrent adds of one pair", func(t *testing.T) {
		p2, err := db.CreatePlaylist(ctx, &domain.Playlist{OwnerID: ada.ID, Title: "Race", CreatedAt: now, UpdatedAt: now})
		require.NoError(t, err)

		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			wins, dups int
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := db.AddPlaylistTrack(ctx, domain.PlaylistTrack{PlaylistID: p2.ID, TrackID: alpha.ID, AddedAt: now})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case errors.Is(err, domain.ErrDuplicate):
					dups++
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, wins)
		assert.Equal(t, 7, dups)
	})

	t.Run("deleting an account cascades", func(t *testing.T) {
		require.NoError(t, db.DeleteByID(ctx, ada.ID))

		p, err := db.GetPlaylist(ctx, p1.ID)
		require.NoError(t, err)
		assert.Nil(t, p)
		tr, err := db.GetTrack(ctx, alpha.ID)
		require.NoError(t, err)
		assert.Nil(t, tr)
		tr, err = db.GetTrack(ctx, zeta.ID)
		require.NoError(t, err)
		assert.NotNil(t, tr)
	})
}
