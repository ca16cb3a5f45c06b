package types

type CompetitionParticipantRequest struct {
	Name      string `json:"name" validate:"required,max=64"`
	Category  string `json:"category" validate:"required,competitioncategory"`
	AthleteID string `json:"athleteId" validate:"omitempty,numeric,max=32"`
}

type CompetitionRequest struct {
	Date         string                           `json:"date" validate:"required,calendardate"`
	Name         string                           `json:"name" validate:"required,max=128"`
	Participants []*CompetitionParticipantRequest `json:"participants" validate:"dive"`
}
