package service

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/localday"
	"runclub.dev/backend/internal/pkg/observability"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/repo"
)

// Gift is the ledger that moves target distance between challenge participants.
// Every mutation runs in one database transaction and the target updates are
// relative, so concurrent gifts on the same participant compose.
type Gift struct {
	DB            *bun.DB
	GiftRepo      *repo.Gift
	ChallengeRepo *repo.Challenge
	UserRepo      *repo.User

	quotaMax int
	now      func() time.Time
	// rollQuota draws the max gift count of a user's new day, in [0, quotaMax].
	rollQuota func() int
}

func NewGift(db *bun.DB, giftRepo *repo.Gift, challengeRepo *repo.Challenge, userRepo *repo.User, conf *appconfig.Config) *Gift {
	s := &Gift{
		DB:            db,
		GiftRepo:      giftRepo,
		ChallengeRepo: challengeRepo,
		UserRepo:      userRepo,
		quotaMax:      conf.GiftQuotaMax,
		now:           time.Now,
	}
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s.rollQuota = func() int {
		mu.Lock()
		defer mu.Unlock()
		return rng.Intn(s.quotaMax + 1)
	}
	return s
}

// CheckGiftAvailability makes sure the user's quota row for today exists and
// reports whether a gift can still be given today.
func (s *Gift) CheckGiftAvailability(ctx context.Context, userID int) (*types.GiftAvailability, error) {
	if _, err := s.UserRepo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	day := localday.Today(s.now())
	quota, err := s.GiftRepo.GetOrCreateQuota(ctx, s.DB, userID, day, s.rollQuota())
	if err != nil {
		return nil, err
	}

	return &types.GiftAvailability{
		UserID:    userID,
		Day:       day,
		Available: quota.Available(),
		Remaining: quota.Remaining(),
		MaxCount:  quota.MaxCount,
		UsedCount: quota.UsedCount,
	}, nil
}

// GiveGift moves distance kilometers of target from the sender to the receiver
// and consumes one unit of the sender's quota for today. The quota unit, both
// target updates and the log entry commit together or not at all.
func (s *Gift) GiveGift(ctx context.Context, challengeID int, req *types.GiveGiftRequest) (*model.GiftLog, error) {
	if req.Distance <= 0 || math.IsNaN(req.Distance) || math.IsInf(req.Distance, 0) {
		return nil, rcerr.ErrInvalidReq.Msg("gift distance must be a finite number greater than zero")
	}
	if req.FromUserID == req.ToUserID {
		return nil, rcerr.ErrInvalidReq.Msg("cannot give a gift to yourself")
	}
	if _, err := s.ChallengeRepo.GetChallengeByID(ctx, challengeID); err != nil {
		return nil, err
	}

	L := log.With().
		Int("challengeId", challengeID).
		Int("fromUserId", req.FromUserID).
		Int("toUserId", req.ToUserID).
		Float64("distance", req.Distance).
		Logger()

	now := s.now()
	day := localday.Today(now)
	giftLog := &model.GiftLog{
		ChallengeID: challengeID,
		FromUserID:  req.FromUserID,
		ToUserID:    req.ToUserID,
		Distance:    req.Distance,
		CreatedAt:   now,
	}

	err := s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.GiftRepo.GetOrCreateQuota(ctx, tx, req.FromUserID, day, s.rollQuota()); err != nil {
			return errors.Wrap(err, "failed to load gift quota")
		}
		consumed, err := s.GiftRepo.ConsumeQuota(ctx, tx, req.FromUserID, day)
		if err != nil {
			return errors.Wrap(err, "failed to consume gift quota")
		}
		if !consumed {
			return rcerr.ErrQuotaExhausted
		}

		if err := s.ChallengeRepo.AdjustTarget(ctx, tx, challengeID, req.FromUserID, -req.Distance); err != nil {
			return participantErr(err, req.FromUserID)
		}
		if err := s.ChallengeRepo.AdjustTarget(ctx, tx, challengeID, req.ToUserID, req.Distance); err != nil {
			return participantErr(err, req.ToUserID)
		}

		return s.GiftRepo.CreateLog(ctx, tx, giftLog)
	})
	if err != nil {
		outcome := "failed"
		if errors.Is(err, rcerr.ErrQuotaExhausted) {
			outcome = "quota_exhausted"
		}
		observability.GiftTransfers.WithLabelValues(outcome).Inc()
		L.Warn().Err(err).Str("evt.name", "gift.give.rejected").Msg("gift rolled back")
		return nil, err
	}

	observability.GiftTransfers.WithLabelValues("committed").Inc()
	L.Info().Str("evt.name", "gift.give.committed").Int("giftLogId", giftLog.ID).Msg("gift committed")
	return giftLog, nil
}

// AdminAdjustTargets applies signed deltas to participants' targets as one batch.
// Each entry is logged as a transfer from the admin user to the participant.
// Any failing entry rolls back the whole batch.
func (s *Gift) AdminAdjustTargets(ctx context.Context, challengeID int, req *types.AdjustTargetsRequest) ([]*model.GiftLog, error) {
	for _, adj := range req.Adjustments {
		if adj.Delta == 0 || math.IsNaN(adj.Delta) || math.IsInf(adj.Delta, 0) {
			return nil, rcerr.ErrInvalidReq.Msg("adjustment for user %d must have a finite non-zero delta", adj.UserID)
		}
	}
	if _, err := s.ChallengeRepo.GetChallengeByID(ctx, challengeID); err != nil {
		return nil, err
	}
	if _, err := s.UserRepo.GetUserByID(ctx, req.AdminUserID); err != nil {
		return nil, err
	}

	now := s.now()
	logs := make([]*model.GiftLog, 0, len(req.Adjustments))
	err := s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, adj := range req.Adjustments {
			if err := s.ChallengeRepo.AdjustTarget(ctx, tx, challengeID, adj.UserID, adj.Delta); err != nil {
				return participantErr(err, adj.UserID)
			}
			entry := &model.GiftLog{
				ChallengeID: challengeID,
				FromUserID:  req.AdminUserID,
				ToUserID:    adj.UserID,
				Distance:    adj.Delta,
				CreatedAt:   now,
			}
			if err := s.GiftRepo.CreateLog(ctx, tx, entry); err != nil {
				return err
			}
			logs = append(logs, entry)
		}
		return nil
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("evt.name", "gift.adjust.rejected").
			Int("challengeId", challengeID).
			Int("adminUserId", req.AdminUserID).
			Msg("target adjustment batch rolled back")
		return nil, err
	}

	observability.TargetAdjustments.Add(float64(len(logs)))
	log.Info().
		Str("evt.name", "gift.adjust.committed").
		Int("challengeId", challengeID).
		Int("adminUserId", req.AdminUserID).
		Int("count", len(logs)).
		Msg("target adjustments committed")
	return logs, nil
}

func participantErr(err error, userID int) error {
	if errors.Is(err, rcerr.ErrNotFound) {
		return rcerr.ErrNotFound.Msg("user %d has not joined this challenge", userID)
	}
	return err
}
