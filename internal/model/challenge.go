package model

import (
	"github.com/uptrace/bun"
)

type Challenge struct {
	bun.BaseModel `bun:"challenges,alias:ch"`

	ID   int    `bun:",pk,autoincrement" json:"id"`
	Name string `bun:",notnull" json:"name"`
	// StartDate and EndDate are inclusive local calendar days, YYYY-MM-DD.
	StartDate string `bun:",notnull" json:"startDate"`
	EndDate   string `bun:",notnull" json:"endDate"`
}

type ChallengeParticipant struct {
	bun.BaseModel `bun:"challenge_participants,alias:chp"`

	ID          int `bun:",pk,autoincrement" json:"id"`
	ChallengeID int `bun:",notnull,unique:challenge_participants_challenge_user" json:"challengeId"`
	UserID      int `bun:",notnull,unique:challenge_participants_challenge_user" json:"userId"`
	// TargetDistance is in kilometers and may become negative through gifts.
	TargetDistance float64 `bun:",notnull" json:"targetDistance"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
}
