package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/floatdr/forum/internal/domain"
)

func TestFilterThreads(t *testing.T) {
	threads := []domain.Thread{
		{Id: 1, Title: "Go generics in practice"},
		{Id: 2, Title: "Cooking with cast iron"},
		{Id: 3, Title: "GO tournament results"},
	}

	tests := []struct {
		name  string
		query string
		want  []domain.ThreadId
	}{
		{"empty keeps all", "", []domain.ThreadId{1, 2, 3}},
		{"case insensitive", "go", []domain.ThreadId{1, 3}},
		{"substring mid-word", "iron", []domain.ThreadId{2}},
		{"no match", "rust", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterThreads(threads, tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d threads, want %d", len(got), len(tt.want))
			}
			for i, thread := range got {
				if thread.Id != tt.want[i] {
					t.Errorf("thread[%d].Id = %d, want %d", i, thread.Id, tt.want[i])
				}
			}
		})
	}
}

func TestHomeHandler(t *testing.T) {
	store := &MockStore{
		LatestThreadsFunc: func(ctx context.Context, limit int) ([]domain.Thread, error) {
			if limit != homeFeedLimit {
				t.Errorf("limit = %d", limit)
			}
			return []domain.Thread{{Id: 1, Title: "hello"}}, nil
		},
	}
	h := testHandler(store)

	req := httptest.NewRequest("GET", "/?q=hel", nil)
	rec := httptest.NewRecorder()
	h.HomeHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHomeHandlerBackendDown(t *testing.T) {
	store := &MockStore{
		LatestThreadsFunc: func(ctx context.Context, limit int) ([]domain.Thread, error) {
			return nil, context.DeadlineExceeded
		},
	}
	h := testHandler(store)

	rec := httptest.NewRecorder()
	h.HomeHandler(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}
