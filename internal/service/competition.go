package service

import (
	"context"

	"github.com/samber/lo"
	"gopkg.in/guregu/null.v3"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/repo"
)

type Competition struct {
	CompetitionRepo *repo.Competition
	Matcher         *Matcher
}

func NewCompetition(competitionRepo *repo.Competition, matcher *Matcher) *Competition {
	return &Competition{
		CompetitionRepo: competitionRepo,
		Matcher:         matcher,
	}
}

// GetCompetitions lists competitions newest first. Results of past competitions
// are matched before returning.
func (s *Competition) GetCompetitions(ctx context.Context) ([]*model.Competition, error) {
	competitions, err := s.CompetitionRepo.GetCompetitions(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range competitions {
		s.Matcher.MatchCompetition(ctx, c)
	}
	return competitions, nil
}

func (s *Competition) GetCompetitionByID(ctx context.Context, id int) (*model.Competition, error) {
	competition, err := s.CompetitionRepo.GetCompetitionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Matcher.MatchCompetition(ctx, competition)
	return competition, nil
}

func (s *Competition) CreateCompetition(ctx context.Context, req *types.CompetitionRequest) (*model.Competition, error) {
	competition := competitionFromRequest(req)
	if err := s.CompetitionRepo.CreateCompetition(ctx, competition); err != nil {
		return nil, err
	}
	return competition, nil
}

// UpdateCompetition replaces date, name and the whole participant list.
// Results of replaced participants are dropped with them.
func (s *Competition) UpdateCompetition(ctx context.Context, id int, req *types.CompetitionRequest) (*model.Competition, error) {
	competition := competitionFromRequest(req)
	competition.ID = id
	if err := s.CompetitionRepo.UpdateCompetition(ctx, competition); err != nil {
		return nil, err
	}
	return competition, nil
}

func (s *Competition) DeleteCompetition(ctx context.Context, id int) error {
	return s.CompetitionRepo.DeleteCompetition(ctx, id)
}

func (s *Competition) AddParticipant(ctx context.Context, competitionID int, req *types.CompetitionParticipantRequest) (*model.CompetitionParticipant, error) {
	if _, err := s.CompetitionRepo.GetCompetitionByID(ctx, competitionID); err != nil {
		return nil, err
	}
	participant := participantFromRequest(req)
	participant.CompetitionID = competitionID
	if err := s.CompetitionRepo.AddParticipant(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *Competition) RemoveParticipant(ctx context.Context, competitionID, participantID int) error {
	return s.CompetitionRepo.RemoveParticipant(ctx, competitionID, participantID)
}

func (s *Competition) MatchCompetitionResults(ctx context.Context, id int) (*model.Competition, error) {
	return s.Matcher.MatchCompetitionResults(ctx, id)
}

func competitionFromRequest(req *types.CompetitionRequest) *model.Competition {
	return &model.Competition{
		Date: req.Date,
		Name: req.Name,
		Participants: lo.Map(req.Participants, func(p *types.CompetitionParticipantRequest, _ int) *model.CompetitionParticipant {
			return participantFromRequest(p)
		}),
	}
}

func participantFromRequest(req *types.CompetitionParticipantRequest) *model.CompetitionParticipant {
	return &model.CompetitionParticipant{
		Name:      req.Name,
		Category:  req.Category,
		AthleteID: null.NewString(req.AthleteID, req.AthleteID != ""),
	}
}
