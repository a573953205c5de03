package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/learnedgeek/site/internal/app"
	"github.com/learnedgeek/site/internal/common"
	"github.com/learnedgeek/site/internal/interfaces"
	"github.com/learnedgeek/site/internal/models"
)

// --- In-memory fakes for the app dependencies ---

type fakeContactStore struct {
	msgs map[string]*models.ContactMessage
}

func (f *fakeContactStore) Save(ctx context.Context, msg *models.ContactMessage) error {
	if f.msgs == nil {
		f.msgs = map[string]*models.ContactMessage{}
	}
	copied := *msg
	f.msgs[msg.ID] = &copied
	return nil
}

func (f *fakeContactStore) MarkDelivered(ctx context.Context, id string) error {
	m, ok := f.msgs[id]
	if !ok {
		return fmt.Errorf("message not found: %s", id)
	}
	m.Delivered = true
	return nil
}

func (f *fakeContactStore) List(ctx context.Context) ([]*models.ContactMessage, error) {
	out := make([]*models.ContactMessage, 0, len(f.msgs))
	for _, m := range f.msgs {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeUserStore struct {
	users map[string]*models.AdminUser
}

func (f *fakeUserStore) Get(ctx context.Context, email string) (*models.AdminUser, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("user not found: %s", email)
	}
	return u, nil
}

func (f *fakeUserStore) Save(ctx context.Context, user *models.AdminUser) error {
	if f.users == nil {
		f.users = map[string]*models.AdminUser{}
	}
	f.users[user.Email] = user
	return nil
}

type fakeStorage struct {
	contacts fakeContactStore
	users    fakeUserStore
}

func (f *fakeStorage) SessionStore() interfaces.SessionStore { return nil }

func (f *fakeStorage) StateStore() interfaces.StateStore { return nil }

func (f *fakeStorage) ContactStore() interfaces.ContactStore { return &f.contacts }

func (f *fakeStorage) UserStore() interfaces.UserStore { return &f.users }

func (f *fakeStorage) Close() error { return nil }

type fakeContent struct {
	posts  []models.Post
	covers map[string][]byte
	ctypes map[string]string
}

func (f *fakeContent) List(ctx context.Context) ([]models.Post, error) {
	return f.posts, nil
}

func (f *fakeContent) Get(ctx context.Context, slug string) (*models.RenderedPost, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			return &models.RenderedPost{Post: p, HTML: "<p>" + p.Title + "</p>"}, nil
		}
	}
	return nil, fmt.Errorf("post not found: %s", slug)
}

func (f *fakeContent) CoverImage(ctx context.Context, slug string) ([]byte, string, error) {
	data, ok := f.covers[slug]
	if !ok {
		return nil, "", fmt.Errorf("post has no cover image: %s", slug)
	}
	return data, f.ctypes[slug], nil
}

type fakeMailer struct {
	sent []*models.ContactMessage
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg *models.ContactMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeImages struct {
	converted [][]byte
}

func (f *fakeImages) SVGToPNG(ctx context.Context, svg []byte) ([]byte, error) {
	f.converted = append(f.converted, svg)
	return append([]byte("png:"), svg...), nil
}

type fakePublisher struct {
	configured bool
	connected  bool
	result     models.PublishResult
	published  []models.PublishRequest

	completeErr   error
	lastState     string
	lastCode      string
	disconnected  bool
	connectCalled bool
}

func (f *fakePublisher) IsConfigured() bool { return f.configured }

func (f *fakePublisher) HasValidSession(ctx context.Context) bool { return f.connected }

func (f *fakePublisher) Disconnect(ctx context.Context) error {
	f.disconnected = true
	return nil
}

func (f *fakePublisher) Connect(ctx context.Context) (string, error) {
	f.connectCalled = true
	return "https://platform.test/authorize?state=s1", nil
}

func (f *fakePublisher) CompleteConnect(ctx context.Context, state, code string) error {
	f.lastState, f.lastCode = state, code
	return f.completeErr
}

func (f *fakePublisher) Publish(ctx context.Context, req models.PublishRequest) models.PublishResult {
	f.published = append(f.published, req)
	return f.result
}

// --- Harness ---

type harness struct {
	server    *Server
	storage   *fakeStorage
	content   *fakeContent
	mailer    *fakeMailer
	images    *fakeImages
	publisher *fakePublisher
	config    *common.Config
}

func newHarness() *harness {
	cfg := common.NewDefaultConfig()
	cfg.Auth.JWTSecret = "test-secret"

	h := &harness{
		storage: &fakeStorage{},
		content: &fakeContent{
			posts: []models.Post{
				{Slug: "hello-world", Title: "Hello World", Description: "First post", Date: time.Now()},
			},
			covers: map[string][]byte{},
			ctypes: map[string]string{},
		},
		mailer:    &fakeMailer{},
		images:    &fakeImages{},
		publisher: &fakePublisher{configured: true, connected: true, result: models.PublishSuccess("urn:li:share:1")},
		config:    cfg,
	}

	h.server = NewServer(&app.App{
		Config:    cfg,
		Logger:    common.NewSilentLogger(),
		Storage:   h.storage,
		Content:   h.content,
		Mailer:    h.mailer,
		Images:    h.images,
		Publisher: h.publisher,
	})

	return h
}

func (h *harness) seedAdmin(email, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	h.storage.users.Save(context.Background(), &models.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	})
}

func (h *harness) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(email, password string) (string, int) {
	rec := h.request(http.MethodPost, "/api/admin/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		return "", rec.Code
	}
	var resp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return resp.Token, rec.Code
}
