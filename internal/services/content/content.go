// Package content serves blog posts from the content directory. The index
// lives in posts.json; each post's body is a markdown file beside it.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/russross/blackfriday/v2"

	"github.com/learnedgeek/site/internal/common"
	"github.com/learnedgeek/site/internal/interfaces"
	"github.com/learnedgeek/site/internal/models"
)

const indexFile = "posts.json"

// Service implements interfaces.ContentService.
type Service struct {
	dir    string
	logger *common.Logger

	mu    sync.RWMutex
	index []models.Post
}

// NewService creates a content service rooted at dir. The index is loaded
// lazily on first use and can be refreshed with Reload.
func NewService(dir string, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{dir: dir, logger: logger}
}

// Reload re-reads posts.json from disk.
func (s *Service) Reload(ctx context.Context) error {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if err != nil {
		return fmt.Errorf("failed to read post index: %w", err)
	}

	var index models.PostIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("failed to parse post index: %w", err)
	}

	// Newest first
	sort.Slice(index.Posts, func(i, j int) bool {
		return index.Posts[i].Date.After(index.Posts[j].Date)
	})

	s.mu.Lock()
	s.index = index.Posts
	s.mu.Unlock()

	s.logger.Debug().Int("posts", len(index.Posts)).Msg("Post index loaded")
	return nil
}

func (s *Service) posts(ctx context.Context) ([]models.Post, error) {
	s.mu.RLock()
	loaded := s.index != nil
	s.mu.RUnlock()

	if !loaded {
		if err := s.Reload(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, len(s.index))
	copy(out, s.index)
	return out, nil
}

// List returns all posts, newest first.
func (s *Service) List(ctx context.Context) ([]models.Post, error) {
	return s.posts(ctx)
}

// Get returns one post with its markdown body rendered to HTML.
func (s *Service) Get(ctx context.Context, slug string) (*models.RenderedPost, error) {
	posts, err := s.posts(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		if p.Slug != slug {
			continue
		}

		body, err := os.ReadFile(filepath.Join(s.dir, filepath.Clean(p.File)))
		if err != nil {
			return nil, fmt.Errorf("failed to read post body: %w", err)
		}

		html := blackfriday.Run(body)
		return &models.RenderedPost{Post: p, HTML: string(html)}, nil
	}

	return nil, fmt.Errorf("post '%s' not found", slug)
}

// CoverImage returns the raw bytes and content type of a post's cover image.
func (s *Service) CoverImage(ctx context.Context, slug string) ([]byte, string, error) {
	posts, err := s.posts(ctx)
	if err != nil {
		return nil, "", err
	}

	for _, p := range posts {
		if p.Slug != slug {
			continue
		}
		if p.Image == "" {
			return nil, "", fmt.Errorf("post '%s' has no cover image", slug)
		}

		data, err := os.ReadFile(filepath.Join(s.dir, filepath.Clean(p.Image)))
		if err != nil {
			return nil, "", fmt.Errorf("failed to read cover image: %w", err)
		}

		ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(p.Image)))
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		return data, ctype, nil
	}

	return nil, "", fmt.Errorf("post '%s' not found", slug)
}

// Ensure Service implements ContentService
var _ interfaces.ContentService = (*Service)(nil)
