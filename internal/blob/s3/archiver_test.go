package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

type fakeArchiveStore struct {
	opps []domain.Opportunity
	err  error
}

func (f *fakeArchiveStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Opportunity, error) {
	return f.opps, f.err
}

type fakeWriter struct {
	path        string
	contentType string
	body        []byte
	err         error
	puts        int
}

func (f *fakeWriter) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	f.puts++
	f.path = path
	f.contentType = contentType
	b, _ := io.ReadAll(data)
	f.body = b
	return f.err
}

func TestArchiveOpportunities(t *testing.T) {
	cutoff := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	store := &fakeArchiveStore{opps: []domain.Opportunity{
		{ID: "a", SportKey: "basketball_nba", ProfitPct: 4.2},
		{ID: "b", SportKey: "icehockey_nhl", ProfitPct: 1.1},
	}}
	writer := &fakeWriter{}

	count, err := NewArchiver(writer, store).ArchiveOpportunities(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("ArchiveOpportunities: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if writer.path != "archive/opportunities/2026-01.jsonl" {
		t.Errorf("path = %q", writer.path)
	}
	if writer.contentType != "application/x-ndjson" {
		t.Errorf("content type = %q", writer.contentType)
	}

	lines := strings.Split(strings.TrimSpace(string(writer.body)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d JSONL lines, want 2", len(lines))
	}
	var first domain.Opportunity
	if err := json.NewDecoder(bytes.NewReader([]byte(lines[0]))).Decode(&first); err != nil {
		t.Fatalf("decode first line: %v", err)
	}
	if first.ID != "a" {
		t.Errorf("first record ID = %q, want a", first.ID)
	}
}

func TestArchiveOpportunitiesEmpty(t *testing.T) {
	writer := &fakeWriter{}
	count, err := NewArchiver(writer, &fakeArchiveStore{}).ArchiveOpportunities(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("ArchiveOpportunities: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if writer.puts != 0 {
		t.Error("upload performed for empty archive")
	}
}

func TestArchiveOpportunitiesUploadFailure(t *testing.T) {
	uploadErr := errors.New("bucket unavailable")
	store := &fakeArchiveStore{opps: []domain.Opportunity{{ID: "a"}}}
	_, err := NewArchiver(&fakeWriter{err: uploadErr}, store).ArchiveOpportunities(context.Background(), time.Now())
	if !errors.Is(err, uploadErr) {
		t.Fatalf("got %v, want wrapped upload error", err)
	}
}
