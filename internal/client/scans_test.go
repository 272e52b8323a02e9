package client

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, name string, size int) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, bytes.Repeat([]byte{0xAB}, size), 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return p
}

func Test_UploadScan_MultipartForm(t *testing.T) {
	batchID, _ := uuid.NewV4()
	scanID, _ := uuid.NewV4()
	userID, _ := uuid.NewV4()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/scan/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad form"})
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "missing file"})
			return
		}
		defer file.Close()

		if hdr.Filename != "card.jpg" {
			t.Errorf("filename=%q", hdr.Filename)
		}
		if ct := hdr.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("part content type=%q", ct)
		}
		if got := r.FormValue("batch_id"); got != batchID.String() {
			t.Errorf("batch_id=%q", got)
		}
		if got := r.FormValue("auto_process"); got != "true" {
			t.Errorf("auto_process=%q", got)
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"id": scanID, "user_id": userID, "batch_id": batchID, "status": "pending",
		})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, _ := newTestClient(t, ts, newSignedInSession(t, "acc", "ref"))

	img := writeTestImage(t, "card.jpg", 2048)
	scan, err := c.UploadScan(context.Background(), img, &batchID, true)
	require.NoError(t, err)
	require.Equal(t, scanID, scan.ID)
	require.Equal(t, "pending", scan.Status)
}

func Test_UploadScan_RetriesAfterRefresh(t *testing.T) {
	var uploads int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/scan/upload", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&uploads, 1)
		if r.Header.Get("Authorization") != "Bearer new" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
			return
		}
		// The multipart body must arrive intact on the second attempt.
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse form on retry: %v", err)
		}
		if _, hdr, err := r.FormFile("file"); err != nil || hdr.Size == 0 {
			t.Errorf("retried request lost the file part: %v", err)
		}
		id, _ := uuid.NewV4()
		writeJSON(w, http.StatusCreated, map[string]any{"id": id, "status": "pending"})
	})
	mux.HandleFunc("/api/v1/auth/refresh", refreshHandler("new"))
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, _ := newTestClient(t, ts, newSignedInSession(t, "stale", "ref"))

	img := writeTestImage(t, "card.png", 1024)
	_, err := c.UploadScan(context.Background(), img, nil, false)
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&uploads))
}

func Test_UploadScan_RejectsBadInputLocally(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { atomic.AddInt32(&hits, 1) })
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, _ := newTestClient(t, ts, newSignedInSession(t, "acc", "ref"))
	ctx := context.Background()

	if _, err := c.UploadScan(ctx, writeTestImage(t, "card.gif", 10), nil, true); err == nil ||
		!strings.Contains(err.Error(), "unsupported image type") {
		t.Fatalf("gif accepted: %v", err)
	}
	if _, err := c.UploadScan(ctx, writeTestImage(t, "huge.jpg", maxScanSize+1), nil, true); err == nil ||
		!strings.Contains(err.Error(), "10MB") {
		t.Fatalf("oversized image accepted: %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("invalid uploads reached the server")
	}
}

func Test_UploadScans_PartialFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/scan/upload", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(32 << 20)
		_, hdr, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "missing file"})
			return
		}
		if strings.HasPrefix(hdr.Filename, "bad") {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "unreadable image"})
			return
		}
		id, _ := uuid.NewV4()
		writeJSON(w, http.StatusCreated, map[string]any{"id": id, "status": "pending"})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, _ := newTestClient(t, ts, newSignedInSession(t, "acc", "ref"))

	paths := []string{
		writeTestImage(t, "ok1.jpg", 100),
		writeTestImage(t, "bad.jpg", 100),
		writeTestImage(t, "ok2.webp", 100),
	}
	results := c.UploadScans(context.Background(), paths, nil, true)
	require.Len(t, results, 3)

	var ok, failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		ok++
		require.NotNil(t, r.Scan)
	}
	require.Equal(t, 2, ok)
	require.Equal(t, 1, failed)
}
