package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"testing"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

type fakeBlobReader struct {
	objects map[string]string
}

func (f *fakeBlobReader) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	data, ok := f.objects[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func (f *fakeBlobReader) List(ctx context.Context, prefix string) ([]domain.BlobInfo, error) {
	var infos []domain.BlobInfo
	for path, data := range f.objects {
		if strings.HasPrefix(path, prefix) {
			infos = append(infos, domain.BlobInfo{
				Path:         path,
				Size:         int64(len(data)),
				LastModified: time.Now().UTC(),
			})
		}
	}
	return infos, nil
}

func (f *fakeBlobReader) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := f.objects[path]
	return ok, nil
}

func TestListArchives(t *testing.T) {
	blobs := &fakeBlobReader{objects: map[string]string{
		"archive/opportunities/2026-07.jsonl": `{"id":"a"}` + "\n",
		"snapshots/2026/07/01/raw.json":       "{}",
	}}
	h := NewArchiveHandler(blobs, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/archives", nil)
	rec := httptest.NewRecorder()
	h.ListArchives(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Archives []domain.BlobInfo `json:"archives"`
		Count    int               `json:"count"`
	}
	decodeBody(t, rec, &resp)
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1 (snapshots must not leak in)", resp.Count)
	}
	if resp.Archives[0].Path != "archive/opportunities/2026-07.jsonl" {
		t.Errorf("path = %q", resp.Archives[0].Path)
	}
}

func TestGetArchive(t *testing.T) {
	body := `{"id":"a"}` + "\n"
	blobs := &fakeBlobReader{objects: map[string]string{
		"archive/opportunities/2026-07.jsonl": body,
	}}
	h := NewArchiveHandler(blobs, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/archives/2026-07.jsonl", nil)
	req.SetPathValue("name", "2026-07.jsonl")
	rec := httptest.NewRecorder()
	h.GetArchive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != body {
		t.Errorf("body = %q, want %q", rec.Body.String(), body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("content type = %q", ct)
	}
}

func TestGetArchiveErrors(t *testing.T) {
	h := NewArchiveHandler(&fakeBlobReader{}, testLogger())

	tests := []struct {
		name string
		want int
	}{
		{"2026-01.jsonl", http.StatusNotFound},
		{"../secrets.txt", http.StatusBadRequest},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/archives/x", nil)
		req.SetPathValue("name", tt.name)
		rec := httptest.NewRecorder()
		h.GetArchive(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}
