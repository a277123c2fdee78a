package webhook

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/cache"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/notion"
)

func TestGenerateSignature(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		secret  string
	}{
		{"empty payload", []byte{}, "secret"},
		{"simple payload", []byte(`{"type":"page.created"}`), "mysecret"},
		{"empty secret", []byte(`test`), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSignature(tt.payload, tt.secret)
			if !strings.HasPrefix(result, "sha256=") {
				t.Errorf("GenerateSignature() = %q, want sha256= prefix", result)
			}
			// sha256= plus 64 hex characters
			if len(result) != 71 {
				t.Errorf("GenerateSignature() returned signature with length %d, expected 71", len(result))
			}

			result2 := GenerateSignature(tt.payload, tt.secret)
			if result != result2 {
				t.Errorf("GenerateSignature() not consistent: %s != %s", result, result2)
			}
		})
	}
}

func TestVerifySignature(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		secret  string
	}{
		{"valid signature", []byte(`{"type":"page.content_updated"}`), "mysecret"},
		{"empty payload", []byte{}, "secret"},
		{"unicode payload", []byte(`{"title":"Gestão","content":"Liderança"}`), "segredo-ção"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signature := GenerateSignature(tt.payload, tt.secret)

			if !VerifySignature(tt.payload, signature, tt.secret) {
				t.Error("VerifySignature() = false for a valid signature")
			}
			if !VerifySignature(tt.payload, strings.TrimPrefix(signature, "sha256="), tt.secret) {
				t.Error("VerifySignature() should accept a signature without prefix")
			}
			if VerifySignature(tt.payload, signature, "wrong-secret") {
				t.Error("VerifySignature() should return false with wrong secret")
			}
		})
	}
}

func TestVerifySignature_InvalidSignature(t *testing.T) {
	payload := []byte(`{"test":"data"}`)
	secret := "mysecret"

	tests := []struct {
		name      string
		signature string
		secret    string
	}{
		{"empty signature", "", secret},
		{"invalid hex", "sha256=not-a-valid-hex-string", secret},
		{"wrong length", "abc123", secret},
		{"tampered signature", "sha256=0000000000000000000000000000000000000000000000000000000000000000", secret},
		{"no secret configured", GenerateSignature(payload, ""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifySignature(payload, tt.signature, tt.secret) {
				t.Error("VerifySignature() should return false for invalid signature")
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	body := []byte(`{
		"id": "evt-1",
		"timestamp": "2025-03-01T10:00:00.000Z",
		"workspace_id": "ws",
		"subscription_id": "sub",
		"type": "page.properties_updated",
		"attempt_number": 2,
		"entity": {"id": "page-1", "type": "page"},
		"data": {"parent": {"id": "posts-db", "type": "database"}}
	}`)

	event, err := ParseEvent(body)
	if err != nil {
		t.Fatalf("ParseEvent() error: %v", err)
	}
	if event.Type != "page.properties_updated" || event.Entity.ID != "page-1" {
		t.Errorf("ParseEvent() = %+v", event)
	}
	if event.Data.Parent == nil || event.Data.Parent.ID != "posts-db" {
		t.Errorf("Parent = %+v", event.Data.Parent)
	}
	if event.AttemptNumber != 2 {
		t.Errorf("AttemptNumber = %d, want 2", event.AttemptNumber)
	}
	if event.IsVerification() {
		t.Error("regular event reported as verification")
	}

	verification, err := ParseEvent([]byte(`{"verification_token":"secret_abc"}`))
	if err != nil {
		t.Fatalf("ParseEvent() error: %v", err)
	}
	if !verification.IsVerification() {
		t.Error("verification request not recognized")
	}

	if _, err := ParseEvent([]byte(`{not json`)); err == nil {
		t.Error("ParseEvent() should fail on invalid JSON")
	}
}

func TestTagsFor(t *testing.T) {
	dbs := notion.Databases{
		Posts:      "1111-2222",
		Authors:    "aaaa-bbbb",
		Categories: "cccc-dddd",
	}
	page := func(eventType, parent string) *Event {
		return &Event{Type: eventType, Data: EventData{Parent: &Entity{ID: parent, Type: "database"}}}
	}

	tests := []struct {
		name  string
		event *Event
		want  []string
	}{
		{"post edited", page("page.content_updated", "1111-2222"), []string{cache.TagPosts}},
		{"author edited", page("page.properties_updated", "aaaabbbb"), []string{cache.TagAuthors, cache.TagPosts}},
		{"category created", page("page.created", "CCCC-DDDD"), []string{cache.TagCategories, cache.TagPosts}},
		{"page without parent", &Event{Type: "page.deleted"}, []string{cache.TagPosts}},
		{"schema change", &Event{Type: "database.schema_updated"}, []string{cache.TagAll}},
		{"data source change", &Event{Type: "data_source.content_updated"}, []string{cache.TagAll}},
		{"comment", &Event{Type: "comment.created"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TagsFor(tt.event, dbs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TagsFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultDebounceConfig(t *testing.T) {
	cfg := DefaultDebounceConfig()

	if cfg.Interval != 1*time.Second {
		t.Errorf("DefaultDebounceConfig().Interval = %v, want 1s", cfg.Interval)
	}
	if cfg.MaxWait != 5*time.Second {
		t.Errorf("DefaultDebounceConfig().MaxWait = %v, want 5s", cfg.MaxWait)
	}
}

// recordingRevalidator records revalidated tags.
type recordingRevalidator struct {
	mu    sync.Mutex
	calls []string
	done  chan string
}

func newRecordingRevalidator() *recordingRevalidator {
	return &recordingRevalidator{done: make(chan string, 64)}
}

func (r *recordingRevalidator) Revalidate(_ context.Context, tags ...string) ([]string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, tags...)
	r.mu.Unlock()
	for _, tag := range tags {
		r.done <- tag
	}
	return tags, nil
}

func (r *recordingRevalidator) count(tag string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == tag {
			n++
		}
	}
	return n
}

func (r *recordingRevalidator) wait(t *testing.T, tag string) {
	t.Helper()
	select {
	case got := <-r.done:
		if got != tag {
			t.Errorf("revalidated %q, want %q", got, tag)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("tag %q was not revalidated", tag)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	target := newRecordingRevalidator()
	d := NewDebouncer(target, DebounceConfig{Interval: 50 * time.Millisecond, MaxWait: time.Second}, testLogger())
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Queue(cache.TagPosts)
	}
	if d.PendingCount() != 1 || !d.Pending(cache.TagPosts) {
		t.Fatalf("PendingCount() = %d, want 1", d.PendingCount())
	}

	target.wait(t, cache.TagPosts)

	if got := target.count(cache.TagPosts); got != 1 {
		t.Errorf("posts revalidated %d times, want 1", got)
	}
	if d.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d after revalidation", d.PendingCount())
	}
}

func TestDebouncer_SeparateTags(t *testing.T) {
	target := newRecordingRevalidator()
	d := NewDebouncer(target, DebounceConfig{Interval: time.Hour, MaxWait: time.Hour}, testLogger())

	d.Queue(cache.TagPosts, cache.TagAuthors, "", cache.TagPosts)
	if d.PendingCount() != 2 {
		t.Errorf("PendingCount() = %d, want 2", d.PendingCount())
	}

	d.Stop()

	if target.count(cache.TagPosts) != 1 || target.count(cache.TagAuthors) != 1 {
		t.Errorf("Stop() should flush each pending tag once, got %v", target.calls)
	}

	d.Queue(cache.TagPosts)
	if d.PendingCount() != 0 {
		t.Error("Queue() after Stop() should be ignored")
	}
}

func TestDebouncer_MaxWait(t *testing.T) {
	target := newRecordingRevalidator()
	d := NewDebouncer(target, DebounceConfig{Interval: time.Hour, MaxWait: 20 * time.Millisecond}, testLogger())
	defer d.Stop()

	d.Queue(cache.TagCategories)
	time.Sleep(40 * time.Millisecond)
	d.Queue(cache.TagCategories)

	target.wait(t, cache.TagCategories)
	if d.Pending(cache.TagCategories) {
		t.Error("tag should not stay pending past MaxWait")
	}
}

func TestDebouncer_Flush(t *testing.T) {
	target := newRecordingRevalidator()
	d := NewDebouncer(target, DebounceConfig{Interval: time.Hour, MaxWait: time.Hour}, testLogger())
	defer d.Stop()

	d.Queue(cache.TagAll)
	d.Flush()

	target.wait(t, cache.TagAll)
	if d.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d after Flush", d.PendingCount())
	}
}
