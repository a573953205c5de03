package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnedgeek/site/internal/models"
)

func TestHealth(t *testing.T) {
	h := newHarness()
	rec := h.request(http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestPosts_ListAndGet(t *testing.T) {
	h := newHarness()

	rec := h.request(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello-world")

	rec = h.request(http.MethodGet, "/api/posts/hello-world", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var post models.RenderedPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "Hello World", post.Title)
	assert.Contains(t, post.HTML, "<p>")

	rec = h.request(http.MethodGet, "/api/posts/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPosts_MethodNotAllowed(t *testing.T) {
	h := newHarness()
	rec := h.request(http.MethodPost, "/api/posts", "", map[string]string{})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestContact_Validation(t *testing.T) {
	h := newHarness()

	rec := h.request(http.MethodPost, "/api/contact", "", map[string]string{
		"email": "not-an-email", "body": "hi",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.request(http.MethodPost, "/api/contact", "", map[string]string{
		"email": "a@b.test", "body": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContact_StoresAndDelivers(t *testing.T) {
	h := newHarness()

	rec := h.request(http.MethodPost, "/api/contact", "", map[string]string{
		"name": "Visitor", "email": "a@b.test", "subject": "Hey", "body": "Hello!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sent"`)

	require.Len(t, h.mailer.sent, 1)
	msgs, _ := h.storage.contacts.List(context.Background())
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Delivered)
}

func TestContact_MailFailureStillStores(t *testing.T) {
	h := newHarness()
	h.mailer.err = errors.New("smtp down")

	rec := h.request(http.MethodPost, "/api/contact", "", map[string]string{
		"email": "a@b.test", "body": "Hello!",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stored"`)

	msgs, _ := h.storage.contacts.List(context.Background())
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].Delivered)
}

func TestAdminLogin(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin@x.test", "hunter2")

	_, code := h.login("admin@x.test", "wrong")
	assert.Equal(t, http.StatusUnauthorized, code)

	_, code = h.login("nobody@x.test", "hunter2")
	assert.Equal(t, http.StatusUnauthorized, code)

	token, code := h.login("admin@x.test", "hunter2")
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, token)
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin@x.test", "hunter2")

	for _, path := range []string{
		"/api/admin/messages",
		"/api/admin/linkedin/status",
		"/api/admin/linkedin/connect",
	} {
		rec := h.request(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec = h.request(http.MethodGet, path, "garbage-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAdminMessages(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin@x.test", "hunter2")
	token, _ := h.login("admin@x.test", "hunter2")

	h.request(http.MethodPost, "/api/contact", "", map[string]string{
		"email": "a@b.test", "body": "Hello!",
	})

	rec := h.request(http.MethodGet, "/api/admin/messages", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@b.test")
}

func TestLinkedInStatus(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin@x.test", "hunter2")
	token, _ := h.login("admin@x.test", "hunter2")

	rec := h.request(http.MethodGet, "/api/admin/linkedin/status", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status["configured"])
	assert.True(t, status["connected"])
}

func TestLinkedInConnectAndCallback(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin@x.test", "hunter2")
	token, _ := h.login("admin@x.test", "hunter2")

	rec := h.request(http.MethodGet, "/api/admin/linkedin/connect", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "authorization_url")
	assert.True(t, h.publisher.connectCalled)

	// The callback carries no bearer token; the one-time state authenticates it.
	rec = h.request(http.MethodGet, "/api/admin/linkedin/callback?state=s1&code=abc123", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", h.publisher.lastState)
	assert.Equal(t, "abc123", h.publisher.lastCode)
}

func TestLinkedInCallback_Rejections(t *testing.T) {
	h := newHarness()

	rec := h.request(http.MethodGet, "/api/admin/linkedin/callback?error=user_cancelled_login", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.request(http.MethodGet, "/api/admin/linkedin/callback?code=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.publisher.completeErr = errors.New("state mismatch")
	rec = h.request(http.MethodGet, "/api/admin/linkedin/callback?state=bad&code=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLinkedInDisconnect(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin@x.test", "hunter2")
	token, _ := h.login("admin@x.test", "hunter2")

	rec := h.request(http.MethodPost, "/api/admin/linkedin/disconnect", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, h.publisher.disconnected)
}

func TestLinkedInPublish(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin@x.test", "hunter2")
	token, _ := h.login("admin@x.test", "hunter2")

	rec := h.request(http.MethodPost, "/api/admin/linkedin/publish", token, map[string]interface{}{
		"slug": "hello-world",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "urn:li:share:1")

	require.Len(t, h.publisher.published, 1)
	req := h.publisher.published[0]
	assert.Contains(t, req.Text, "Hello World")
	assert.Contains(t, req.Text, "First post")
	assert.Equal(t, "https://learnedgeek.com/blog/hello-world", req.ArticleURL)
	assert.False(t, req.HasImage())
}

func TestLinkedInPublish_CustomText(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin@x.test", "hunter2")
	token, _ := h.login("admin@x.test", "hunter2")

	rec := h.request(http.MethodPost, "/api/admin/linkedin/publish", token, map[string]interface{}{
		"slug": "hello-world",
		"text": "Fresh off the press.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fresh off the press.", h.publisher.published[0].Text)
}

func TestLinkedInPublish_WithImageConvertsSVG(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin@x.test", "hunter2")
	token, _ := h.login("admin@x.test", "hunter2")

	h.content.covers["hello-world"] = []byte("<svg/>")
	h.content.ctypes["hello-world"] = "image/svg+xml"

	rec := h.request(http.MethodPost, "/api/admin/linkedin/publish", token, map[string]interface{}{
		"slug": "hello-world", "with_image": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, h.publisher.published, 1)
	req := h.publisher.published[0]
	assert.Equal(t, "image/png", req.ImageContentType)
	assert.Equal(t, []byte("png:<svg/>"), req.ImageBytes)
	assert.Len(t, h.images.converted, 1)
}

func TestLinkedInPublish_Errors(t *testing.T) {
	h := newHarness()
	h.seedAdmin("admin@x.test", "hunter2")
	token, _ := h.login("admin@x.test", "hunter2")

	rec := h.request(http.MethodPost, "/api/admin/linkedin/publish", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.request(http.MethodPost, "/api/admin/linkedin/publish", token, map[string]interface{}{"slug": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	h.publisher.result = models.PublishFailure("platform rejected the post")
	rec = h.request(http.MethodPost, "/api/admin/linkedin/publish", token, map[string]interface{}{"slug": "hello-world"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "platform rejected the post")
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness()
	rec := h.request(http.MethodOptions, "/api/posts", "", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCorrelationIDEchoed(t *testing.T) {
	h := newHarness()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Correlation-ID"))
}
