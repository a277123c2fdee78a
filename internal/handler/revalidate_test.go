package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/cache"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/middleware"
	"github.com/dev01-admnstrtv/administrativamente-sub000/internal/webhook"
)

func secretHeader() map[string]string {
	return map[string]string{middleware.SecretHeader: testSecret, "Content-Type": "application/json"}
}

func TestRevalidate_Secret(t *testing.T) {
	env := newTestEnv(t, "", "")
	rr, _ := env.do(t, http.MethodPost, "/api/revalidate?tag=posts", nil, secretHeader())
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code, "no secret configured")

	env = newTestEnv(t, testSecret, "")
	rr, _ = env.do(t, http.MethodPost, "/api/revalidate?tag=posts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = env.do(t, http.MethodPost, "/api/revalidate?tag=posts", nil,
		map[string]string{middleware.SecretHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = env.do(t, http.MethodPost, "/api/revalidate?tag=posts&secret="+testSecret, nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code, "secret accepted from the query")
}

func TestRevalidate_Tags(t *testing.T) {
	env := newTestEnv(t, testSecret, "")

	rr, body := env.do(t, http.MethodPost, "/api/revalidate?tag=categories",
		strings.NewReader(`{"tags":["Posts"," posts ","homepage"]}`), secretHeader())
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, true, body["revalidated"])
	assert.Equal(t, []any{"posts", "homepage", "categories"}, body["tags"])
	assert.Equal(t, []any{"posts"}, body["policies"])
	_, err := uuid.Parse(body["id"].(string))
	assert.NoError(t, err, "id is a uuid")

	require.Len(t, env.blog.revalidated, 1)
	assert.Equal(t, []string{"posts", "homepage", "categories"}, env.blog.revalidated[0])
}

func TestRevalidate_All(t *testing.T) {
	env := newTestEnv(t, testSecret, "")

	rr, _ := env.do(t, http.MethodPost, "/api/revalidate?tag=all", nil, secretHeader())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{cache.TagAll}, env.blog.revalidated[0])
}

func TestRevalidate_BadRequests(t *testing.T) {
	env := newTestEnv(t, testSecret, "")

	tests := []struct {
		name    string
		target  string
		body    string
		wantErr string
	}{
		{"no tags", "/api/revalidate", "", "No tags given"},
		{"empty body list", "/api/revalidate", `{"tags":[]}`, "No tags given"},
		{"unknown tag", "/api/revalidate?tag=pages", "", "Unknown tag: pages"},
		{"bad json", "/api/revalidate", `{"tags":`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			rr, decoded := env.do(t, http.MethodPost, tt.target, body, secretHeader())
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantErr, decoded["error"])
		})
	}
	assert.Empty(t, env.blog.revalidated)
}

func TestRevalidate_Failure(t *testing.T) {
	env := newTestEnv(t, testSecret, "")
	env.blog.revalidateErr = errors.New("redis down")

	rr, body := env.do(t, http.MethodPost, "/api/revalidate?tag=posts", nil, secretHeader())
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Revalidation failed", body["error"])
}

func TestRevalidate_Async(t *testing.T) {
	env := newTestEnv(t, testSecret, "")

	rr, body := env.do(t, http.MethodPost, "/api/revalidate?tag=posts&tag=authors&async=true", nil, secretHeader())
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, true, body["queued"])
	assert.Equal(t, []string{"posts", "authors"}, env.queue.tags)
	assert.Empty(t, env.blog.revalidated, "async requests go through the queue")
}

func TestCacheStats(t *testing.T) {
	env := newTestEnv(t, testSecret, "")

	rr, _ := env.do(t, http.MethodGet, "/api/cache/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, body := env.do(t, http.MethodGet, "/api/cache/stats", nil, secretHeader())
	require.Equal(t, http.StatusOK, rr.Code)

	stats := body["stats"].(map[string]any)
	assert.Equal(t, "memory", stats["backend"])
	assert.Len(t, body["policies"], len(cache.Policies()))
	assert.EqualValues(t, 0, body["pending_revalidations"])
	assert.Equal(t, "cache-warmup", body["warmup"].(map[string]any)["name"])
}

const webhookSecret = "secret_webhook_token"

func signedHeaders(payload string) map[string]string {
	return map[string]string{
		"Content-Type":          "application/json",
		webhook.SignatureHeader: webhook.GenerateSignature([]byte(payload), webhookSecret),
	}
}

func TestNotionWebhook_Verification(t *testing.T) {
	env := newTestEnv(t, testSecret, "")

	rr, body := env.do(t, http.MethodPost, "/api/webhooks/notion",
		strings.NewReader(`{"verification_token":"secret_abc"}`), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "received", body["verification"])
	assert.Empty(t, env.queue.tags)
}

func TestNotionWebhook_Events(t *testing.T) {
	authorEvent := `{"id":"evt-1","type":"page.properties_updated","entity":{"id":"page-1","type":"page"},"data":{"parent":{"id":"authors-db","type":"database"}}}`

	t.Run("secret not configured", func(t *testing.T) {
		env := newTestEnv(t, testSecret, "")
		rr, _ := env.do(t, http.MethodPost, "/api/webhooks/notion", strings.NewReader(authorEvent), signedHeaders(authorEvent))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		env := newTestEnv(t, testSecret, webhookSecret)
		rr, _ := env.do(t, http.MethodPost, "/api/webhooks/notion", strings.NewReader(authorEvent),
			map[string]string{webhook.SignatureHeader: "sha256=deadbeef"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, env.queue.tags)
	})

	t.Run("accepted", func(t *testing.T) {
		env := newTestEnv(t, testSecret, webhookSecret)
		rr, body := env.do(t, http.MethodPost, "/api/webhooks/notion", strings.NewReader(authorEvent), signedHeaders(authorEvent))
		require.Equal(t, http.StatusAccepted, rr.Code)
		assert.Equal(t, "evt-1", body["event_id"])
		assert.Equal(t, []string{cache.TagAuthors, cache.TagPosts}, env.queue.tags)
	})

	t.Run("ignored event", func(t *testing.T) {
		env := newTestEnv(t, testSecret, webhookSecret)
		comment := `{"id":"evt-2","type":"comment.created","entity":{"id":"c","type":"comment"}}`
		rr, body := env.do(t, http.MethodPost, "/api/webhooks/notion", strings.NewReader(comment), signedHeaders(comment))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, true, body["ignored"])
		assert.Empty(t, env.queue.tags)
	})

	t.Run("invalid payload", func(t *testing.T) {
		env := newTestEnv(t, testSecret, webhookSecret)
		rr, _ := env.do(t, http.MethodPost, "/api/webhooks/notion", strings.NewReader(`{not json`), nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
