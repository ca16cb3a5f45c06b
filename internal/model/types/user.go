package types

type CreateUserRequest struct {
	Name         string `json:"name" validate:"required,max=128"`
	StravaID     string `json:"stravaId" validate:"required,numeric,max=32"`
	AccessToken  string `json:"accessToken" validate:"omitempty,max=256"`
	RefreshToken string `json:"refreshToken" validate:"omitempty,max=256"`
}

type UpdateNicknameRequest struct {
	// Nickname replaces the display name. An empty nickname clears it.
	Nickname string `json:"nickname" validate:"max=64"`
}

// UpdateTokensRequest replaces both Strava tokens. An empty token clears it.
type UpdateTokensRequest struct {
	AccessToken  string `json:"accessToken" validate:"max=256"`
	RefreshToken string `json:"refreshToken" validate:"max=256"`
}

type UserResponse struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Nickname     string `json:"nickname,omitempty"`
	DisplayName  string `json:"displayName"`
	StravaID     string `json:"stravaId"`
	FullSyncDone bool   `json:"fullSyncDone"`
}
