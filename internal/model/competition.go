package model

import (
	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"
)

const (
	Category5K   = "5K"
	Category10K  = "10K"
	CategoryHalf = "Half"
	Category32K  = "32K"
	CategoryFull = "Full"
)

// Categories lists every competition category in display order.
var Categories = []string{Category5K, Category10K, CategoryHalf, Category32K, CategoryFull}

type Competition struct {
	bun.BaseModel `bun:"competitions,alias:c"`

	ID int `bun:",pk,autoincrement" json:"id"`
	// Date is the local calendar day the race took place on, YYYY-MM-DD.
	Date string `bun:",notnull" json:"date"`
	Name string `bun:",notnull" json:"name"`

	Participants []*CompetitionParticipant `bun:"rel:has-many,join:id=competition_id" json:"participants"`
}

type CompetitionParticipant struct {
	bun.BaseModel `bun:"competition_participants,alias:cp"`

	ID            int         `bun:",pk,autoincrement" json:"id"`
	CompetitionID int         `bun:",notnull" json:"competitionId"`
	Name          string      `bun:",notnull" json:"name"`
	Category      string      `bun:",notnull" json:"category"`
	Result        null.String `json:"result"`
	AthleteID     null.String `json:"athleteId"`
	ActivityID    null.String `json:"activityId"`
}

// Unmatched reports whether the participant is linked to an athlete but has no result yet.
func (p *CompetitionParticipant) Unmatched() bool {
	return p.AthleteID.Valid && p.AthleteID.String != "" &&
		(!p.Result.Valid || p.Result.String == "")
}
