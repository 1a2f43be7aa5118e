package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
	"gatherly/sessionhub/internal/repository"
	"gatherly/sessionhub/pkg/crypto"
)

// Invite pairs a token row with the shareable URL handed to the issuer.
type Invite struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InviteService issues and resolves shareable, time-limited join links.
// Tokens are multi-use until expiry; expiry is checked lazily at resolve
// time, never swept.
type InviteService interface {
	Issue(ctx context.Context, sessionID, issuerID uuid.UUID) (*Invite, error)
	Resolve(ctx context.Context, token string) (*model.SessionSummary, error)
}

type inviteService struct {
	store   repository.Store
	state   repository.StateStore
	ttl     time.Duration
	baseURL string
}

func NewInviteService(store repository.Store, state repository.StateStore, ttl time.Duration, baseURL string) InviteService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &inviteService{
		store:   store,
		state:   state,
		ttl:     ttl,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *inviteService) Issue(ctx context.Context, sessionID, issuerID uuid.UUID) (*Invite, error) {
	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !session.IsActive() {
		return nil, ErrSessionInactive
	}

	if session.CreatorID != issuerID {
		entry, err := s.store.Memberships().Find(ctx, sessionID, model.RegisteredIdentity(issuerID).Key())
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: only confirmed members may share invites", ErrNotAuthorized)
			}
			return nil, err
		}
		if !entry.IsConfirmed() {
			return nil, fmt.Errorf("%w: only confirmed members may share invites", ErrNotAuthorized)
		}
	}

	token, err := crypto.GenerateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}

	invite := &model.InviteToken{
		SessionID: sessionID,
		Token:     token,
		IssuerID:  issuerID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.store.Invites().Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("create invite token: %w", err)
	}

	return &Invite{
		Token:     token,
		URL:       s.baseURL + "/invites/" + token,
		ExpiresAt: invite.ExpiresAt,
	}, nil
}

// cachedInvite is what the state store holds per token: enough to skip the
// token-row read, never the occupancy (which must be fresh).
type cachedInvite struct {
	SessionID uuid.UUID `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *inviteService) Resolve(ctx context.Context, token string) (*model.SessionSummary, error) {
	sessionID, expiresAt, err := s.lookupToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !time.Now().Before(expiresAt) {
		return nil, ErrTokenExpired
	}

	session, err := s.store.Sessions().GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	summary := session.Summary()
	return &summary, nil
}

func (s *inviteService) lookupToken(ctx context.Context, token string) (uuid.UUID, time.Time, error) {
	key := "invite:" + token

	if s.state != nil {
		if raw, err := s.state.Get(ctx, key); err == nil && raw != nil {
			var cached cachedInvite
			if json.Unmarshal(raw, &cached) == nil {
				return cached.SessionID, cached.ExpiresAt, nil
			}
		}
	}

	invite, err := s.store.Invites().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, time.Time{}, ErrTokenNotFound
		}
		return uuid.Nil, time.Time{}, err
	}

	if s.state != nil {
		if ttl := time.Until(invite.ExpiresAt); ttl > 0 {
			if raw, err := json.Marshal(cachedInvite{SessionID: invite.SessionID, ExpiresAt: invite.ExpiresAt}); err == nil {
				_ = s.state.Set(ctx, key, raw, ttl)
			}
		}
	}
	return invite.SessionID, invite.ExpiresAt, nil
}

var _ InviteService = (*inviteService)(nil)
