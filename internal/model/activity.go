package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"
)

const ActivityTypeRun = "Run"

type Activity struct {
	bun.BaseModel `bun:"activities,alias:a"`

	ID int `bun:",pk,autoincrement" json:"id"`
	// UserID is the owning user. Activities are removed together with their owner.
	UserID int `bun:",notnull" json:"userId"`
	// ActivityID is the upstream (Strava) identifier and the upsert key.
	ActivityID         string    `bun:",unique,notnull" json:"activityId"`
	Name               string    `json:"name"`
	Type               string    `bun:",notnull" json:"type"`
	Distance           float64   `bun:",notnull" json:"distance"`
	MovingTime         int       `bun:",notnull" json:"movingTime"`
	ElapsedTime        int       `bun:",notnull" json:"elapsedTime"`
	TotalElevationGain float64   `json:"totalElevationGain"`
	StartDate          time.Time `bun:",notnull" json:"startDate"`
	AverageSpeed       float64   `json:"averageSpeed"`
	MaxSpeed           float64   `json:"maxSpeed"`

	AverageHeartrate null.Float `json:"averageHeartrate"`
	AverageCadence   null.Float `json:"averageCadence"`
	AverageTemp      null.Float `json:"averageTemp"`
	Calories         null.Float `json:"calories"`
	MaxHeartrate     null.Float `json:"maxHeartrate"`
	SufferScore      null.Float `json:"sufferScore"`
	WorkoutType      null.Int   `json:"workoutType"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"-"`
}

// Pace returns seconds per kilometer, or zero for activities without distance.
func (a *Activity) Pace() float64 {
	if a.Distance <= 0 {
		return 0
	}
	return float64(a.MovingTime) / (a.Distance / 1000)
}

// UserStats is one row of the leaderboard aggregate over a date range.
type UserStats struct {
	UserID          int        `bun:"user_id" json:"userId"`
	Name            string     `bun:"name" json:"name"`
	ActivityCount   int        `bun:"activity_count" json:"activityCount"`
	TotalDistance   float64    `bun:"total_distance" json:"totalDistance"`
	TotalMovingTime int64      `bun:"total_moving_time" json:"totalMovingTime"`
	TotalElevation  float64    `bun:"total_elevation" json:"totalElevation"`
	AvgHeartrate    null.Float `bun:"avg_heartrate" json:"avgHeartrate"`
	AvgCadence      null.Float `bun:"avg_cadence" json:"avgCadence"`
}

// RunTotals is the aggregate of Run activities of one user inside a window.
type RunTotals struct {
	Distance float64 `bun:"distance"`
	Count    int     `bun:"count"`
}
