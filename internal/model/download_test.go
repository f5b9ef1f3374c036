package model

import "testing"

func TestNewDownload_Defaults(t *testing.T) {
	dl := NewDownload("http://example.com/clip.mp4")

	if dl.URL != "http://example.com/clip.mp4" {
		t.Errorf("expected URL to be kept, got '%s'", dl.URL)
	}
	if dl.Status != StatusQueued {
		t.Errorf("expected status Queued, got %s", dl.Status)
	}
	if dl.Filename != PendingFilename {
		t.Errorf("expected filename '%s', got '%s'", PendingFilename, dl.Filename)
	}
	if dl.Size != UnknownLabel || dl.ETA != UnknownLabel {
		t.Errorf("expected size/ETA '%s', got '%s'/'%s'", UnknownLabel, dl.Size, dl.ETA)
	}
	if dl.Speed != InitialSpeed {
		t.Errorf("expected speed '%s', got '%s'", InitialSpeed, dl.Speed)
	}
	if dl.AddedAt.IsZero() {
		t.Error("expected AddedAt to be set")
	}
	if !dl.FinishedAt.IsZero() {
		t.Error("expected FinishedAt to be zero")
	}
}

func TestDownload_DisplayName(t *testing.T) {
	tests := []struct {
		filename string
		url      string
		expected string
	}{
		{"clip.mp4", "http://x/clip.mp4", "clip.mp4"},
		{PendingFilename, "http://x/clip.mp4", "http://x/clip.mp4"},
		{"", "http://x/clip.mp4", "http://x/clip.mp4"},
	}

	for _, test := range tests {
		dl := &Download{URL: test.url, Filename: test.filename}
		if result := dl.DisplayName(); result != test.expected {
			t.Errorf("DisplayName() with filename='%s' = '%s', expected '%s'", test.filename, result, test.expected)
		}
	}
}

func TestDownload_ShortURL(t *testing.T) {
	dl := &Download{URL: "http://example.com/a/very/long/path/to/a/video/file.mp4"}

	short := dl.ShortURL(20)
	if len(short) > 20 {
		t.Errorf("expected at most 20 chars, got %d (%q)", len(short), short)
	}

	full := dl.ShortURL(500)
	if full != dl.URL {
		t.Errorf("expected full URL, got %q", full)
	}
}
