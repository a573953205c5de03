// Package publisher composes the LinkedIn client, session store and state
// store into the application-facing publishing entry point.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/learnedgeek/site/internal/common"
	"github.com/learnedgeek/site/internal/interfaces"
	"github.com/learnedgeek/site/internal/models"
)

// ErrNoSession is returned when a publish is attempted before connect.
var ErrNoSession = errors.New("no LinkedIn session: connect first")

// ErrStateMismatch is returned when the callback state does not match an
// issued one. Treated as a possible CSRF, always a hard failure.
var ErrStateMismatch = errors.New("oauth state mismatch")

// Service implements interfaces.Publisher.
type Service struct {
	client   interfaces.LinkedInClient
	sessions interfaces.SessionStore
	states   interfaces.StateStore
	scopes   []string
	enabled  bool
	logger   *common.Logger
}

// NewService creates the publisher. enabled reflects whether client
// credentials are configured; when false every network operation is refused
// before any call is made.
func NewService(client interfaces.LinkedInClient, sessions interfaces.SessionStore, states interfaces.StateStore, scopes []string, enabled bool, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		client:   client,
		sessions: sessions,
		states:   states,
		scopes:   scopes,
		enabled:  enabled,
		logger:   logger,
	}
}

// IsConfigured reports whether client credentials are present. No I/O.
func (s *Service) IsConfigured() bool {
	return s.enabled && s.client != nil
}

// HasValidSession reports whether a token and member identity are stored.
// No network call and no expiry check; a dead token surfaces as a publish failure.
func (s *Service) HasValidSession(ctx context.Context) bool {
	session, err := s.sessions.Load(ctx)
	if err != nil || session == nil {
		return false
	}
	return session.Token.AccessToken != "" && session.MemberURN != ""
}

// Connect issues a one-time state token and returns the authorization URL.
func (s *Service) Connect(ctx context.Context) (string, error) {
	if !s.IsConfigured() {
		return "", errors.New("LinkedIn client credentials not configured")
	}

	state := uuid.New().String()
	if err := s.states.Save(ctx, &models.OAuthState{
		State:     state,
		CreatedAt: time.Now(),
	}); err != nil {
		return "", fmt.Errorf("failed to save oauth state: %w", err)
	}

	s.logger.Debug().Msg("LinkedIn connect started")
	return s.client.AuthorizationURL(state, s.scopes), nil
}

// CompleteConnect verifies the callback state, exchanges the code, resolves
// the member identity and stores the session. The state is consumed before
// any network call: a mismatch never reaches the token endpoint.
func (s *Service) CompleteConnect(ctx context.Context, state, code string) error {
	if !s.IsConfigured() {
		return errors.New("LinkedIn client credentials not configured")
	}

	if err := s.states.Consume(ctx, state); err != nil {
		s.logger.Warn().Err(err).Msg("LinkedIn callback state rejected")
		return ErrStateMismatch
	}

	bundle, err := s.client.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	memberID, err := s.client.ResolveMemberID(ctx, bundle.AccessToken)
	if err != nil {
		return fmt.Errorf("identity resolution failed: %w", err)
	}

	session := &models.SocialSession{
		Token:       *bundle,
		MemberURN:   memberURN(memberID),
		ConnectedAt: time.Now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info().Str("member", session.MemberURN).Msg("LinkedIn connected")
	return nil
}

// Disconnect clears the stored session.
func (s *Service) Disconnect(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// Publish creates one post. With image bytes present the upload pipeline
// runs first; any phase failure aborts the publish and no post is created.
// Expected platform failures come back inside the result.
func (s *Service) Publish(ctx context.Context, req models.PublishRequest) models.PublishResult {
	if !s.IsConfigured() {
		return models.PublishFailure("LinkedIn client credentials not configured")
	}

	session, err := s.sessions.Load(ctx)
	if err != nil || session == nil || session.Token.AccessToken == "" || session.MemberURN == "" {
		return models.PublishFailure(ErrNoSession.Error())
	}

	token := session.Token.AccessToken

	if req.HasImage() {
		handle, err := s.client.UploadImage(ctx, token, session.MemberURN, req.ImageBytes, req.ImageContentType)
		if err != nil {
			s.logger.Error().Err(err).Msg("LinkedIn image upload failed")
			return models.PublishFailure(fmt.Sprintf("image upload failed: %v", err))
		}

		postID, err := s.client.CreateImageShare(ctx, token, session.MemberURN, req.Text, req.ArticleURL, handle)
		if err != nil {
			s.logger.Error().Err(err).Msg("LinkedIn image share failed")
			return models.PublishFailure(fmt.Sprintf("share failed: %v", err))
		}

		s.logger.Info().Str("post_id", postID).Msg("LinkedIn image post published")
		return models.PublishSuccess(postID)
	}

	postID, err := s.client.CreateLinkShare(ctx, token, session.MemberURN, req.Text, req.ArticleURL)
	if err != nil {
		s.logger.Error().Err(err).Msg("LinkedIn link share failed")
		return models.PublishFailure(fmt.Sprintf("share failed: %v", err))
	}

	s.logger.Info().Str("post_id", postID).Msg("LinkedIn link post published")
	return models.PublishSuccess(postID)
}

// memberURN normalizes the userinfo sub to a person URN. Some responses
// already carry the full URN; prefixing those again would corrupt the author
// field of every subsequent post.
func memberURN(sub string) string {
	if strings.HasPrefix(sub, "urn:") {
		return sub
	}
	return "urn:li:person:" + sub
}

// Ensure Service implements Publisher
var _ interfaces.Publisher = (*Service)(nil)
