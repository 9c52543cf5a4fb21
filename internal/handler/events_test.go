package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/floatdr/forum/internal/domain"
)

type stubFeed struct {
	events  chan domain.ChangeEvent
	filters []string
	err     error
}

func (f *stubFeed) Subscribe(_ context.Context, _, _, filter string) (<-chan domain.ChangeEvent, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func TestThreadEventsStream(t *testing.T) {
	store := fixtureStore()
	h := testHandler(store)
	feed := &stubFeed{events: make(chan domain.ChangeEvent)}
	h.Feed = feed

	req := withThreadParam(httptest.NewRequest("GET", "/threads/42/events", nil), "42")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ThreadEventsHandler(rec, req)
		close(done)
	}()

	// The fixture holds one comment and one nested reply; an insert from the
	// feed must be applied on top of that snapshot.
	feed.events <- domain.ChangeEvent{
		Table: "forum_replies",
		Kind:  domain.ChangeInsert,
		New:   json.RawMessage(`{"id":3,"thread_id":42,"body":"late arrival","created_at":"2026-01-02T15:04:05Z"}`),
	}
	// Frames for other tables pass through the subscription untouched.
	feed.events <- domain.ChangeEvent{
		Table: "forum_threads",
		Kind:  domain.ChangeUpdate,
		New:   json.RawMessage(`{"id":42}`),
	}
	close(feed.events)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after feed closed")
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content type = %q", got)
	}
	if got := feed.filters; len(got) != 1 || got[0] != "thread_id=eq.42" {
		t.Errorf("subscribe filters = %v", got)
	}

	body := rec.Body.String()
	if strings.Count(body, "event: reply") != 1 {
		t.Fatalf("want exactly one reply event, body %q", body)
	}
	var ev threadEvent
	data := strings.TrimSpace(strings.Split(strings.Split(body, "data: ")[1], "\n")[0])
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		t.Fatalf("decode event %q: %v", data, err)
	}
	if ev.Kind != string(domain.ChangeInsert) || ev.ReplyId != 3 {
		t.Errorf("event = %+v", ev)
	}
	if ev.Total != 3 {
		t.Errorf("total = %d, want 3 (two fixture replies plus the insert)", ev.Total)
	}
}

func TestThreadEventsDeleteShrinksTotal(t *testing.T) {
	store := fixtureStore()
	h := testHandler(store)
	feed := &stubFeed{events: make(chan domain.ChangeEvent)}
	h.Feed = feed

	req := withThreadParam(httptest.NewRequest("GET", "/threads/42/events", nil), "42")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.ThreadEventsHandler(rec, req)
		close(done)
	}()

	feed.events <- domain.ChangeEvent{
		Table: "forum_replies",
		Kind:  domain.ChangeDelete,
		Old:   json.RawMessage(`{"id":2,"thread_id":42}`),
	}
	close(feed.events)
	<-done

	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("body %q, want total 1 after deleting the nested reply", rec.Body.String())
	}
}

func TestThreadEventsDisabled(t *testing.T) {
	h := testHandler(fixtureStore())

	req := withThreadParam(httptest.NewRequest("GET", "/threads/42/events", nil), "42")
	rec := httptest.NewRecorder()
	h.ThreadEventsHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when no feed is configured", rec.Code)
	}
}
