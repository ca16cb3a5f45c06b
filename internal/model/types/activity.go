package types

import "time"

type CreateActivityRequest struct {
	UserID     int        `json:"userId" validate:"required,gt=0"`
	Name       string     `json:"name" validate:"max=256"`
	Distance   float64    `json:"distance" validate:"required,gt=0"`
	MovingTime int        `json:"movingTime" validate:"required,gt=0"`
	StartDate  *time.Time `json:"startDate"`
}

type RecentActivitiesQuery struct {
	Limit int `query:"limit" validate:"gt=0,lte=100"`
}

type StatsQuery struct {
	Start time.Time
	End   time.Time
}

type PersonalRecord struct {
	Label      string    `json:"label"`
	ActivityID string    `json:"activityId"`
	Name       string    `json:"name"`
	Distance   float64   `json:"distance"`
	MovingTime int       `json:"movingTime"`
	Time       string    `json:"time"`
	StartDate  time.Time `json:"startDate"`
}

type RecentActivity struct {
	ID          int       `json:"id"`
	ActivityID  string    `json:"activityId"`
	UserID      int       `json:"userId"`
	UserName    string    `json:"userName"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Distance    float64   `json:"distance"`
	MovingTime  int       `json:"movingTime"`
	StartDate   time.Time `json:"startDate"`
	PaceSeconds float64   `json:"paceSeconds"`
}
