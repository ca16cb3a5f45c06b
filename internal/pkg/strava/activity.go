package strava

import "time"

// Activity is the subset of Strava's SummaryActivity the club stores.
// Field names double as identifiers in sync filter programs.
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	Distance           float64   `json:"distance"`
	MovingTime         int       `json:"moving_time"`
	ElapsedTime        int       `json:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	StartDate          time.Time `json:"start_date"`
	AverageSpeed       float64   `json:"average_speed"`
	MaxSpeed           float64   `json:"max_speed"`
	Private            bool      `json:"private"`
	Manual             bool      `json:"manual"`

	AverageHeartrate *float64 `json:"average_heartrate"`
	MaxHeartrate     *float64 `json:"max_heartrate"`
	AverageCadence   *float64 `json:"average_cadence"`
	AverageTemp      *float64 `json:"average_temp"`
	Calories         *float64 `json:"calories"`
	SufferScore      *float64 `json:"suffer_score"`
	WorkoutType      *int     `json:"workout_type"`
}
