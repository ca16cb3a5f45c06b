package service

import (
	"context"
	"time"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v3"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/model/cache"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/repo"
)

type User struct {
	UserRepo *repo.User
}

func NewUser(userRepo *repo.User) *User {
	return &User{
		UserRepo: userRepo,
	}
}

// Cache: (singular) users, 5 min
func (s *User) GetUsers(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := cache.Users.MutexGetSet(&users, func() ([]*model.User, error) {
		return s.UserRepo.GetUsers(ctx)
	}, time.Minute*5)
	return users, err
}

func (s *User) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	return s.UserRepo.GetUserByID(ctx, id)
}

func (s *User) CreateUser(ctx context.Context, req *types.CreateUserRequest) (*model.User, error) {
	_, err := s.UserRepo.GetUserByStravaID(ctx, req.StravaID)
	if err == nil {
		return nil, rcerr.ErrInvalidReq.Msg("strava athlete %s is already registered", req.StravaID)
	} else if !errors.Is(err, rcerr.ErrNotFound) {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		StravaID:     req.StravaID,
		AccessToken:  null.NewString(req.AccessToken, req.AccessToken != ""),
		RefreshToken: null.NewString(req.RefreshToken, req.RefreshToken != ""),
	}
	if err := s.UserRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.invalidate()

	log.Info().Str("evt.name", "user.created").Int("userId", user.ID).Str("stravaId", user.StravaID).Msg("user created")
	return user, nil
}

func (s *User) UpdateNickname(ctx context.Context, id int, nickname string) (*model.User, error) {
	if err := s.UserRepo.UpdateNickname(ctx, id, nickname); err != nil {
		return nil, err
	}
	s.invalidate()
	return s.UserRepo.GetUserByID(ctx, id)
}

func (s *User) UpdateTokens(ctx context.Context, id int, req *types.UpdateTokensRequest) (*model.User, error) {
	err := s.UserRepo.UpdateTokens(ctx, id,
		null.NewString(req.AccessToken, req.AccessToken != ""),
		null.NewString(req.RefreshToken, req.RefreshToken != ""))
	if err != nil {
		return nil, err
	}

	log.Info().Str("evt.name", "user.tokens.updated").Int("userId", id).Msg("user tokens replaced")
	return s.UserRepo.GetUserByID(ctx, id)
}

func (s *User) DeleteUser(ctx context.Context, id int) error {
	if err := s.UserRepo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	cache.InvalidateActivityDerived()

	log.Info().Str("evt.name", "user.deleted").Int("userId", id).Msg("user deleted")
	return nil
}

func (s *User) invalidate() {
	_ = cache.Users.Delete()
}

// ToUserResponse strips credentials and resolves the display name.
func ToUserResponse(user *model.User) *types.UserResponse {
	var resp types.UserResponse
	_ = copier.Copy(&resp, user)
	resp.Nickname = user.Nickname.String
	resp.DisplayName = user.DisplayName()
	return &resp
}

func ToUserResponses(users []*model.User) []*types.UserResponse {
	resp := make([]*types.UserResponse, len(users))
	for i, u := range users {
		resp[i] = ToUserResponse(u)
	}
	return resp
}
