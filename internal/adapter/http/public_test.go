package adapthttp

import "testing"

func TestDefaultPublicPaths(t *testing.T) {
	pp, err := NewPublicPaths(DefaultPublicPaths...)
	if err != nil {
		t.Fatalf("NewPublicPaths: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{"/api/auth/register", true},
		{"/api/auth/login", true},
		{"/api/auth/me", false},
		{"/api/health", true},
		{"/v3/api-docs", true},
		{"/v3/api-docs/CredentialsRequest", true},
		{"/private/images/playlists/a.png", true},
		{"/private/", true},
		{"/api/playlists", false},
		{"/api/auth/login/extra", false},
		{"/privatefiles", false},
	}
	for _, tt := range tests {
		if got := pp.Match(tt.path); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestSingleStarStaysInSegment(t *testing.T) {
	pp, err := NewPublicPaths("/api/*/open")
	if err != nil {
		t.Fatalf("NewPublicPaths: %v", err)
	}
	if !pp.Match("/api/x/open") {
		t.Fatal("expected one segment to match")
	}
	if pp.Match("/api/x/y/open") {
		t.Fatal("single star crossed a separator")
	}
}
