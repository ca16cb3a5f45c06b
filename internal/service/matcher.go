package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/pkg/localday"
	"runclub.dev/backend/internal/pkg/observability"
	"runclub.dev/backend/internal/repo"
)

const (
	MatchMethodName     = "name"
	MatchMethodDistance = "distance"
)

// matchFlightTimeout bounds a shared matching run, which outlives any single caller.
const matchFlightTimeout = time.Minute

// DistanceRange is an inclusive range of meters.
type DistanceRange struct {
	Min float64
	Max float64
}

func (r DistanceRange) Contains(d float64) bool {
	return d >= r.Min && d <= r.Max
}

func (r DistanceRange) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// CategoryRanges is the distance window an activity must fall in to count as a
// race of the given category when its name does not identify the race.
var CategoryRanges = map[string]DistanceRange{
	model.Category5K:   {4600, 5400},
	model.Category10K:  {9200, 10800},
	model.CategoryHalf: {20000, 22000},
	model.Category32K:  {30000, 34000},
	model.CategoryFull: {40000, 46000},
}

// MatchActivity picks the activity that represents the participant's race:
// among activities on the competition's local date, the first whose name contains
// the competition name, otherwise the in-range activity closest to the category's
// midpoint (earlier candidates win ties). Returns nil when nothing qualifies.
func MatchActivity(competition *model.Competition, category string, activities []*model.Activity) (*model.Activity, string) {
	sameDay := lo.Filter(activities, func(a *model.Activity, _ int) bool {
		return localday.DateOf(a.StartDate) == competition.Date
	})
	if len(sameDay) == 0 {
		return nil, ""
	}

	if named, ok := lo.Find(sameDay, func(a *model.Activity) bool {
		return strings.Contains(a.Name, competition.Name)
	}); ok {
		return named, MatchMethodName
	}

	rng, ok := CategoryRanges[category]
	if !ok {
		return nil, ""
	}
	inRange := lo.Filter(sameDay, func(a *model.Activity, _ int) bool {
		return rng.Contains(a.Distance)
	})
	if len(inRange) == 0 {
		return nil, ""
	}

	mid := rng.Midpoint()
	closest := lo.MinBy(inRange, func(a, b *model.Activity) bool {
		return math.Abs(a.Distance-mid) < math.Abs(b.Distance-mid)
	})
	return closest, MatchMethodDistance
}

// FormatMovingTime renders seconds as H:MM:SS from one hour on and M:SS below it.
func FormatMovingTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

type Matcher struct {
	CompetitionRepo *repo.Competition
	ActivityRepo    *repo.Activity

	now   func() time.Time
	group singleflight.Group
}

func NewMatcher(competitionRepo *repo.Competition, activityRepo *repo.Activity) *Matcher {
	return &Matcher{
		CompetitionRepo: competitionRepo,
		ActivityRepo:    activityRepo,
		now:             time.Now,
	}
}

// MatchCompetitionResults loads the competition and matches its participants.
func (s *Matcher) MatchCompetitionResults(ctx context.Context, competitionID int) (*model.Competition, error) {
	competition, err := s.CompetitionRepo.GetCompetitionByID(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	s.MatchCompetition(ctx, competition)
	return competition, nil
}

// MatchCompetition fills in results of unmatched participants of a competition
// that has already taken place, mutating the participants in place. Failures are
// per participant: they are logged, left unmatched, and retried on the next call.
// Concurrent calls for the same competition share one run, which is detached
// from the cancellation of whichever caller started it.
func (s *Matcher) MatchCompetition(_ context.Context, competition *model.Competition) {
	if competition.Date > localday.Today(s.now()) {
		return
	}
	if !lo.SomeBy(competition.Participants, (*model.CompetitionParticipant).Unmatched) {
		return
	}

	v, _, _ := s.group.Do(strconv.Itoa(competition.ID), func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.Background(), matchFlightTimeout)
		defer cancel()
		return s.matchParticipants(flightCtx, competition), nil
	})
	results := v.(map[int]*model.CompetitionParticipant)
	for _, p := range competition.Participants {
		if matched, ok := results[p.ID]; ok {
			p.Result = matched.Result
			p.ActivityID = matched.ActivityID
		}
	}
}

func (s *Matcher) matchParticipants(ctx context.Context, competition *model.Competition) map[int]*model.CompetitionParticipant {
	results := make(map[int]*model.CompetitionParticipant)
	for _, p := range competition.Participants {
		if !p.Unmatched() {
			continue
		}
		L := log.With().
			Int("competitionId", competition.ID).
			Int("participantId", p.ID).
			Str("athleteId", p.AthleteID.String).
			Logger()

		runs, err := s.ActivityRepo.GetRunsByAthleteID(ctx, p.AthleteID.String)
		if err != nil {
			L.Warn().Err(err).Str("evt.name", "matcher.participant.skipped").Msg("failed to load activities; will retry on next listing")
			continue
		}

		activity, method := MatchActivity(competition, p.Category, runs)
		if activity == nil {
			continue
		}

		result := FormatMovingTime(activity.MovingTime)
		written, err := s.CompetitionRepo.SetParticipantResult(ctx, p.ID, activity.ActivityID, result)
		if err != nil {
			L.Warn().Err(err).Str("evt.name", "matcher.participant.skipped").Msg("failed to persist match; will retry on next listing")
			continue
		}
		if !written {
			continue
		}

		observability.MatcherMatches.WithLabelValues(method).Inc()
		L.Info().
			Str("evt.name", "matcher.participant.matched").
			Str("activityId", activity.ActivityID).
			Str("method", method).
			Str("result", result).
			Msg("competition result matched")

		matched := *p
		matched.Result.SetValid(result)
		matched.ActivityID.SetValid(activity.ActivityID)
		results[p.ID] = &matched
	}
	return results
}
