package service

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/localday"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/repo"
)

type Challenge struct {
	ChallengeRepo *repo.Challenge
	ActivityRepo  *repo.Activity
	UserRepo      *repo.User
	GiftRepo      *repo.Gift
}

func NewChallenge(challengeRepo *repo.Challenge, activityRepo *repo.Activity, userRepo *repo.User, giftRepo *repo.Gift) *Challenge {
	return &Challenge{
		ChallengeRepo: challengeRepo,
		ActivityRepo:  activityRepo,
		UserRepo:      userRepo,
		GiftRepo:      giftRepo,
	}
}

func (s *Challenge) GetChallenges(ctx context.Context) ([]*model.Challenge, error) {
	return s.ChallengeRepo.GetChallenges(ctx)
}

func (s *Challenge) GetChallengeByID(ctx context.Context, id int) (*model.Challenge, error) {
	return s.ChallengeRepo.GetChallengeByID(ctx, id)
}

func (s *Challenge) CreateChallenge(ctx context.Context, req *types.CreateChallengeRequest) (*model.Challenge, error) {
	if _, _, err := localday.Window(req.StartDate, req.EndDate); err != nil {
		return nil, rcerr.ErrInvalidReq.Msg("invalid challenge window: %s", err)
	}
	challenge := &model.Challenge{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.ChallengeRepo.CreateChallenge(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// JoinChallenge adds the user to the challenge, or updates the target of a user
// who already joined.
func (s *Challenge) JoinChallenge(ctx context.Context, challengeID int, req *types.JoinChallengeRequest) (*model.ChallengeParticipant, error) {
	if _, err := s.ChallengeRepo.GetChallengeByID(ctx, challengeID); err != nil {
		return nil, err
	}
	if _, err := s.UserRepo.GetUserByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	participant := &model.ChallengeParticipant{
		ChallengeID:    challengeID,
		UserID:         req.UserID,
		TargetDistance: req.TargetDistance,
	}
	if err := s.ChallengeRepo.JoinChallenge(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

// ProgressPercent is achieved/target as a rounded percentage; a target of zero
// or below counts as no progress.
func ProgressPercent(achievedKm, targetKm float64) int {
	if targetKm <= 0 {
		return 0
	}
	return int(math.Round(achievedKm / targetKm * 100))
}

// GetChallengeProgress computes every participant's Run distance inside the
// challenge's local-day window. An unknown challenge yields an empty list, and a
// participant whose totals cannot be loaded is skipped. The list keeps join order.
func (s *Challenge) GetChallengeProgress(ctx context.Context, challengeID int) ([]*types.ChallengeProgress, error) {
	progress := make([]*types.ChallengeProgress, 0)

	challenge, err := s.ChallengeRepo.GetChallengeByID(ctx, challengeID)
	if errors.Is(err, rcerr.ErrNotFound) {
		return progress, nil
	} else if err != nil {
		return nil, err
	}

	from, until, err := localday.Window(challenge.StartDate, challenge.EndDate)
	if err != nil {
		return nil, err
	}

	participants, err := s.ChallengeRepo.GetParticipants(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	for _, p := range participants {
		totals, err := s.ActivityRepo.SumRunsInRange(ctx, p.UserID, from, until)
		if err != nil {
			log.Warn().
				Err(err).
				Str("evt.name", "challenge.progress.skipped").
				Int("challengeId", challengeID).
				Int("userId", p.UserID).
				Msg("failed to total participant runs")
			continue
		}

		achievedKm := totals.Distance / 1000
		entry := &types.ChallengeProgress{
			UserID:          p.UserID,
			TargetKm:        p.TargetDistance,
			AchievedKm:      achievedKm,
			ActivityCount:   totals.Count,
			ProgressPercent: ProgressPercent(achievedKm, p.TargetDistance),
		}
		if p.User != nil {
			entry.Name = p.User.DisplayName()
		}
		progress = append(progress, entry)
	}

	return progress, nil
}

// GetParticipantActivities lists the user's Run activities inside the challenge window.
func (s *Challenge) GetParticipantActivities(ctx context.Context, challengeID, userID int) ([]*model.Activity, error) {
	challenge, err := s.ChallengeRepo.GetChallengeByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	from, until, err := localday.Window(challenge.StartDate, challenge.EndDate)
	if err != nil {
		return nil, err
	}
	return s.ActivityRepo.GetRunsInRange(ctx, userID, from, until)
}

func (s *Challenge) GetGiftLogs(ctx context.Context, challengeID int) ([]*model.GiftLog, error) {
	if _, err := s.ChallengeRepo.GetChallengeByID(ctx, challengeID); err != nil {
		return nil, err
	}
	return s.GiftRepo.GetLogsByChallengeID(ctx, challengeID)
}
