package service

import (
	"context"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/pkg/rcerr"
)

// TokenProvider hands out a valid Strava access token for a user. Exchanging and
// refreshing OAuth tokens happens outside this service.
type TokenProvider interface {
	AccessToken(ctx context.Context, user *model.User) (string, error)
}

// StoredTokenProvider serves the access token persisted on the user row.
type StoredTokenProvider struct{}

func NewStoredTokenProvider() TokenProvider {
	return StoredTokenProvider{}
}

func (StoredTokenProvider) AccessToken(_ context.Context, user *model.User) (string, error) {
	if !user.AccessToken.Valid || user.AccessToken.String == "" {
		return "", rcerr.ErrInvalidReq.Msg("user %d has no strava access token", user.ID)
	}
	return user.AccessToken.String, nil
}
