package strategy

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSimpleHTTP_Applicable(t *testing.T) {
	s := NewSimpleHTTP(zerolog.Nop())

	// The last-resort strategy takes anything.
	for _, u := range []string{"http://x/a.mp4", "http://x/c", "https://youtube.com/watch?v=abc"} {
		if !s.Applicable(u) {
			t.Errorf("expected %q to be applicable", u)
		}
	}
}

func TestSimpleHTTP_Fetch_SavesBody(t *testing.T) {
	const totalSize = 256 * 1024
	payload := bytes.Repeat([]byte("x"), totalSize)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(totalSize))
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	dir := t.TempDir()
	log := newUpdateLog()
	s := NewSimpleHTTP(zerolog.Nop())

	url := server.URL + "/anything"
	res := s.Fetch(Request{URL: url, DestDir: dir, Headers: DefaultHeaders(url)}, NewToken(), log.record)

	require.Equal(t, OutcomeOK, res.Outcome)
	require.Equal(t, "anything", res.Filename)

	updates := log.all()
	require.NotEmpty(t, updates)
	require.GreaterOrEqual(t, updates[len(updates)-1].Percent, 99.9)

	written, err := os.ReadFile(filepath.Join(dir, "anything"))
	require.NoError(t, err)
	require.Len(t, written, totalSize)
}

func TestSimpleHTTP_Fetch_CancelInsideCallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(1<<20))
		flusher := w.(http.Flusher)
		chunk := bytes.Repeat([]byte("x"), 8192)
		for i := 0; i < 128; i++ {
			if _, err := w.Write(chunk); err != nil {
				return
			}
			flusher.Flush()
			time.Sleep(10 * time.Millisecond)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	log := newUpdateLog()
	token := NewToken()
	s := NewSimpleHTTP(zerolog.Nop())

	done := make(chan Result, 1)
	url := server.URL + "/stream"
	go func() {
		done <- s.Fetch(Request{URL: url, DestDir: dir, Headers: DefaultHeaders(url)}, token, log.record)
	}()

	<-log.first
	token.Cancel()

	select {
	case res := <-done:
		require.Equal(t, OutcomeCancelled, res.Outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("cancel was not observed within 2s")
	}
}

func TestSimpleHTTP_Fetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewSimpleHTTP(zerolog.Nop())
	res := s.Fetch(Request{URL: server.URL + "/x", DestDir: t.TempDir(), Headers: DefaultHeaders(server.URL)}, NewToken(), func(Update) {})

	require.Equal(t, OutcomeTransferFailed, res.Outcome)
}
