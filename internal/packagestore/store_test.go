package packagestore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMarkerMatchesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if markerMatches(dir, "etag-1") {
		t.Fatal("expected no marker to exist yet")
	}
	if err := writeMarker(dir, "etag-1"); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	if !markerMatches(dir, "etag-1") {
		t.Fatal("expected marker to match after write")
	}
	if markerMatches(dir, "etag-2") {
		t.Fatal("expected marker to not match a different etag")
	}
}

func TestMarkerPathIsHiddenInProblemDir(t *testing.T) {
	dir := t.TempDir()
	if err := writeMarker(dir, "etag-1"); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	want := filepath.Join(dir, ".synced-etag")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected marker file at %s: %v", want, err)
	}
	if !markerMatches(dir, "etag-1") {
		t.Fatalf("expected marker written at %s to be found", want)
	}
}
