package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"
)

type User struct {
	bun.BaseModel `bun:"users,alias:u"`

	ID           int         `bun:",pk,autoincrement" json:"id"`
	Name         string      `bun:",notnull" json:"name"`
	Nickname     null.String `json:"nickname"`
	StravaID     string      `bun:",unique,notnull" json:"stravaId"`
	AccessToken  null.String `json:"-"`
	RefreshToken null.String `json:"-"`
	FullSyncDone bool        `bun:",notnull" json:"fullSyncDone"`
	CreatedAt    time.Time   `bun:",notnull" json:"createdAt"`
}

// DisplayName is the nickname when one is set, the Strava name otherwise.
func (u *User) DisplayName() string {
	if u.Nickname.Valid && u.Nickname.String != "" {
		return u.Nickname.String
	}
	return u.Name
}
