package profile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassifyPhoto(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want PhotoSource
	}{
		{"empty", "", PhotoSource{}},
		{"google avatar", "https://lh3.googleusercontent.com/a/x", PhotoSource{Kind: PhotoExternal, URL: "https://lh3.googleusercontent.com/a/x"}},
		{"bare provider host", "https://googleusercontent.com/x", PhotoSource{Kind: PhotoExternal, URL: "https://googleusercontent.com/x"}},
		{"uploaded", "https://storage.googleapis.com/b/earn-pfp/a.png", PhotoSource{Kind: PhotoUploaded, URL: "https://storage.googleapis.com/b/earn-pfp/a.png"}},
		{"lookalike host", "https://evilgoogleusercontent.com/x", PhotoSource{Kind: PhotoUploaded, URL: "https://evilgoogleusercontent.com/x"}},
		{"host in path", "https://cdn.example.com/googleusercontent.com/x", PhotoSource{Kind: PhotoUploaded, URL: "https://cdn.example.com/googleusercontent.com/x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ClassifyPhoto(tt.url, DefaultExternalHosts)); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassifyPhotoCustomHosts(t *testing.T) {
	got := ClassifyPhoto("https://avatars.githubusercontent.com/u/1", []string{".githubusercontent.com"})
	if got.Kind != PhotoExternal {
		t.Fatalf("expected external, got %v", got.Kind)
	}
}
