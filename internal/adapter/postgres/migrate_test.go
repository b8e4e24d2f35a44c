package postgres

import (
	"errors"
	"io/fs"
	"regexp"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	srcErr     error
	dbErr      error
}

func (f *fakeMigrator) Up() error   { return f.upErr }
func (f *fakeMigrator) Down() error { return f.downErr }
func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}
func (f *fakeMigrator) Close() (error, error) { return f.srcErr, f.dbErr }

func TestMigrationsFS_Pairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^\d{6}_[a-z_]+\.(up|down)\.sql$`)
	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		require.Regexp(t, pattern, name)
		base := name[:strings.Index(name, ".")]
		if strings.HasSuffix(name, ".up.sql") {
			ups[base] = true
		} else {
			downs[base] = true
		}
	}
	assert.NotEmpty(t, ups)
	assert.Equal(t, ups, downs, "every up migration needs a down migration")
}

func TestMigrationsFS_PlaylistTrackConstraints(t *testing.T) {
	data, err := fs.ReadFile(migrationsFS, "migrations/000003_create_playlist_tracks.up.sql")
	require.NoError(t, err)
	sql := string(data)

	for name := range uniqueConstraints {
		if strings.HasPrefix(name, "playlist_tracks") {
			assert.Contains(t, sql, name)
		}
	}
	assert.Contains(t, sql, "ON DELETE CASCADE")
	assert.Contains(t, sql, "WHERE position IS NOT NULL")
}

func TestMigrator(t *testing.T) {
	t.Run("no change is not an error", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrator{upErr: migrate.ErrNoChange, downErr: migrate.ErrNoChange}}
		assert.NoError(t, m.Up())
		assert.NoError(t, m.Down())
	})

	t.Run("failures are wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		m := &Migrator{m: &fakeMigrator{upErr: boom}}
		assert.ErrorIs(t, m.Up(), boom)
	})

	t.Run("nil version reads as zero", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrator{version: 9, versionErr: migrate.ErrNilVersion}}
		v, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Zero(t, v)
		assert.False(t, dirty)
	})

	t.Run("version", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrator{version: 3, dirty: true}}
		v, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(3), v)
		assert.True(t, dirty)
	})

	t.Run("close joins both errors", func(t *testing.T) {
		src, db := errors.New("src"), errors.New("db")
		err := (&Migrator{m: &fakeMigrator{srcErr: src, dbErr: db}}).Close()
		assert.ErrorIs(t, err, src)
		assert.ErrorIs(t, err, db)
	})
}
