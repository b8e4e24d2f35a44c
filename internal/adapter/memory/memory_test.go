package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"musify/internal/domain"
)

func seedAccount(t *testing.T, db *DB, username string) *domain.Account {
	t.Helper()
	a, err := db.Save(context.Background(), &domain.Account{Username: username, PasswordHash: "digest", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("Save(%q): %v", username, err)
	}
	return a
}

func intPtr(v int) *int { return &v }

func TestAccountRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	ada := seedAccount(t, db, "ada")
	if ada.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	// Case-sensitive uniqueness
	if _, err := db.Save(ctx, &domain.Account{Username: "ada"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := db.Save(ctx, &domain.Account{Username: "Ada"}); err != nil {
		t.Fatalf("usernames are case-sensitive: %v", err)
	}

	exists, err := db.ExistsByUsername(ctx, "ada")
	if err != nil || !exists {
		t.Fatalf("ExistsByUsername = %v, %v", exists, err)
	}
	missing, err := db.FindByUsername(ctx, "nobody")
	if err != nil || missing != nil {
		t.Fatalf("FindByUsername(nobody) = %v, %v; want nil, nil", missing, err)
	}

	// Update rewrites username and hash, keeps created_at
	upd := *ada
	upd.Username = "ada2"
	upd.PasswordHash = "digest2"
	upd.CreatedAt = time.Time{}
	if _, err := db.Save(ctx, &upd); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	got, err := db.FindByID(ctx, ada.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Username != "ada2" || got.PasswordHash != "digest2" || !got.CreatedAt.Equal(ada.CreatedAt) {
		t.Errorf("unexpected account after update: %+v", got)
	}

	// Renaming onto a taken username leaves the row untouched
	upd.Username = "Ada"
	if _, err := db.Save(ctx, &upd); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	got, _ = db.FindByID(ctx, ada.ID)
	if got.Username != "ada2" {
		t.Errorf("failed update must not change the account, got %q", got.Username)
	}

	all, _ := db.ListAccounts(ctx)
	if len(all) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(all))
	}
}

func TestDeleteAccount_Cascades(t *testing.T) {
	db := New()
	ctx := context.Background()
	ada := seedAccount(t, db, "ada")
	bob := seedAccount(t, db, "bob")

	adaList, _ := db.CreatePlaylist(ctx, &domain.Playlist{OwnerID: ada.ID, Title: "Ada's"})
	bobList, _ := db.CreatePlaylist(ctx, &domain.Playlist{OwnerID: bob.ID, Title: "Bob's"})
	adaTrack, _ := db.CreateTrack(ctx, &domain.Track{Title: "by ada", Artist: domain.ArtistSummary{ID: ada.ID}, DurationSeconds: 10})
	bobTrack, _ := db.CreateTrack(ctx, &domain.Track{Title: "by bob", Artist: domain.ArtistSummary{ID: bob.ID}, DurationSeconds: 10})

	for _, pt := range []domain.PlaylistTrack{
		{PlaylistID: adaList.ID, TrackID: bobTrack.ID},
		{PlaylistID: bobList.ID, TrackID: adaTrack.ID},
		{PlaylistID: bobList.ID, TrackID: bobTrack.ID},
	} {
		if _, err := db.AddPlaylistTrack(ctx, pt); err != nil {
			t.Fatalf("AddPlaylistTrack: %v", err)
		}
	}

	if err := db.DeleteByID(ctx, ada.ID); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}

	if a, _ := db.FindByID(ctx, ada.ID); a != nil {
		t.Error("account still present")
	}
	if p, _ := db.GetPlaylist(ctx, adaList.ID); p != nil {
		t.Error("owned playlist still present")
	}
	if tr, _ := db.GetTrack(ctx, adaTrack.ID); tr != nil {
		t.Error("authored track still present")
	}
	entries, _ := db.ListPlaylistTracks(ctx, bobList.ID)
	if len(entries) != 1 || entries[0].Track.ID != bobTrack.ID {
		t.Errorf("expected only bob's track left in bob's playlist, got %+v", entries)
	}
}

func TestPlaylistRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	ada := seedAccount(t, db, "ada")

	if _, err := db.CreatePlaylist(ctx, &domain.Playlist{OwnerID: 99, Title: "orphan"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown owner, got %v", err)
	}

	for _, title := range []string{"Morning Jazz", "jazz classics", "Rock"} {
		if _, err := db.CreatePlaylist(ctx, &domain.Playlist{OwnerID: ada.ID, Title: title}); err != nil {
			t.Fatalf("CreatePlaylist: %v", err)
		}
	}

	tests := []struct {
		filter string
		want   int
	}{
		{"", 3},
		{"JAZZ", 2},
		{"rock", 1},
		{"polka", 0},
	}
	for _, tc := range tests {
		got, err := db.ListPlaylists(ctx, tc.filter)
		if err != nil {
			t.Fatalf("ListPlaylists(%q): %v", tc.filter, err)
		}
		if len(got) != tc.want {
			t.Errorf("ListPlaylists(%q) returned %d playlists, want %d", tc.filter, len(got), tc.want)
		}
	}

	p, _ := db.GetPlaylist(ctx, 1)
	p.Title = "Evening Jazz"
	if _, err := db.UpdatePlaylist(ctx, p); err != nil {
		t.Fatalf("UpdatePlaylist: %v", err)
	}
	if got, _ := db.GetPlaylist(ctx, 1); got.Title != "Evening Jazz" {
		t.Errorf("expected renamed playlist, got %q", got.Title)
	}

	ok, err := db.DeletePlaylist(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("DeletePlaylist = %v, %v", ok, err)
	}
	ok, _ = db.DeletePlaylist(ctx, 1)
	if ok {
		t.Error("second delete should report false")
	}
}

func TestPlaylistTrackRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	ada := seedAccount(t, db, "ada")
	p, _ := db.CreatePlaylist(ctx, &domain.Playlist{OwnerID: ada.ID, Title: "P1"})
	t1, _ := db.CreateTrack(ctx, &domain.Track{Title: "Zeta", Artist: domain.ArtistSummary{ID: ada.ID}, DurationSeconds: 180})
	t2, _ := db.CreateTrack(ctx, &domain.Track{Title: "Alpha", Artist: domain.ArtistSummary{ID: ada.ID}, DurationSeconds: 200})

	if t1.Artist.Username != "ada" {
		t.Errorf("expected artist username resolved, got %+v", t1.Artist)
	}

	first, err := db.AddPlaylistTrack(ctx, domain.PlaylistTrack{PlaylistID: p.ID, TrackID: t1.ID, AddedAt: time.Now(), Position: intPtr(2)})
	if err != nil {
		t.Fatalf("AddPlaylistTrack: %v", err)
	}
	*first.Position = 7 // callers cannot reach stored state

	tests := []struct {
		name    string
		pt      domain.PlaylistTrack
		wantErr error
	}{
		{"duplicate pair", domain.PlaylistTrack{PlaylistID: p.ID, TrackID: t1.ID, Position: intPtr(5)}, domain.ErrDuplicate},
		{"position taken", domain.PlaylistTrack{PlaylistID: p.ID, TrackID: t2.ID, Position: intPtr(2)}, domain.ErrPositionTaken},
		{"unknown playlist", domain.PlaylistTrack{PlaylistID: 42, TrackID: t2.ID}, domain.ErrNotFound},
		{"unknown track", domain.PlaylistTrack{PlaylistID: p.ID, TrackID: 42}, domain.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := db.AddPlaylistTrack(ctx, tc.pt); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if _, err := db.AddPlaylistTrack(ctx, domain.PlaylistTrack{PlaylistID: p.ID, TrackID: t2.ID, Position: intPtr(1)}); err != nil {
		t.Fatalf("AddPlaylistTrack: %v", err)
	}

	entries, err := db.ListPlaylistTracks(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListPlaylistTracks: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if *entries[0].Position != 2 {
		t.Errorf("stored position changed to %d", *entries[0].Position)
	}

	domain.SortEntries(entries, domain.SortByPosition, domain.Asc)
	if entries[0].Track.ID != t2.ID || entries[1].Track.ID != t1.ID {
		t.Errorf("position asc: got %d, %d", entries[0].Track.ID, entries[1].Track.ID)
	}
	domain.SortEntries(entries, domain.SortByTitle, domain.Asc)
	if entries[0].Track.Title != "Alpha" || entries[1].Track.Title != "Zeta" {
		t.Errorf("title asc: got %q, %q", entries[0].Track.Title, entries[1].Track.Title)
	}

	// Removing an absent pair changes nothing
	if err := db.RemovePlaylistTrack(ctx, p.ID, 99); err != nil {
		t.Fatalf("RemovePlaylistTrack: %v", err)
	}
	if after, _ := db.ListPlaylistTracks(ctx, p.ID); len(after) != 2 {
		t.Errorf("expected 2 entries after no-op remove, got %d", len(after))
	}

	if err := db.RemovePlaylistTrack(ctx, p.ID, t1.ID); err != nil {
		t.Fatalf("RemovePlaylistTrack: %v", err)
	}
	if after, _ := db.ListPlaylistTracks(ctx, p.ID); len(after) != 1 {
		t.Errorf("expected 1 entry after remove, got %d", len(after))
	}

	// Deleting the playlist removes its associations
	if _, err := db.DeletePlaylist(ctx, p.ID); err != nil {
		t.Fatalf("DeletePlaylist: %v", err)
	}
	if after, _ := db.ListPlaylistTracks(ctx, p.ID); len(after) != 0 {
		t.Errorf("associations outlived their playlist: %+v", after)
	}
	if tr, _ := db.GetTrack(ctx, t2.ID); tr == nil {
		t.Error("tracks must outlive playlists")
	}
}

func TestConcurrentAdds_OneWinner(t *testing.T) {
	db := New()
	ctx := context.Background()
	ada := seedAccount(t, db, "ada")
	p, _ := db.CreatePlaylist(ctx, &domain.Playlist{OwnerID: ada.ID, Title: "P"})
	tr, _ := db.CreateTrack(ctx, &domain.Track{Title: "T", Artist: domain.ArtistSummary{ID: ada.ID}, DurationSeconds: 1})

	const workers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := db.AddPlaylistTrack(ctx, domain.PlaylistTrack{PlaylistID: p.ID, TrackID: tr.ID}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one successful add, got %d", wins)
	}
}
