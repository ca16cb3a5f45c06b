package types

type CreateChallengeRequest struct {
	Name      string `json:"name" validate:"required,max=128"`
	StartDate string `json:"startDate" validate:"required,calendardate"`
	EndDate   string `json:"endDate" validate:"required,calendardate"`
}

type JoinChallengeRequest struct {
	UserID         int     `json:"userId" validate:"required,gt=0"`
	TargetDistance float64 `json:"targetDistance" validate:"required,gt=0"`
}

// ChallengeProgress is one participant's standing inside a challenge window.
type ChallengeProgress struct {
	UserID          int     `json:"userId"`
	Name            string  `json:"name"`
	TargetKm        float64 `json:"targetKm"`
	AchievedKm      float64 `json:"achievedKm"`
	ActivityCount   int     `json:"activityCount"`
	ProgressPercent int     `json:"progressPercent"`
}
