package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/pkg/testentry"
	"runclub.dev/backend/internal/repo"
)

func TestFormatMovingTime(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{1505, "25:05"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{12345, "3:25:45"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatMovingTime(c.seconds), "seconds=%d", c.seconds)
	}
}

func TestMatchActivity(t *testing.T) {
	competition := &model.Competition{Date: "2024-05-12", Name: "Harbor 10K"}
	at := func(date string, hour int) time.Time {
		return localTime(t, date, hour, 0, 0)
	}

	t.Run("name takes precedence over distance", func(t *testing.T) {
		activities := []*model.Activity{
			{ActivityID: "a", Name: "Morning Run", Distance: 10000, StartDate: at("2024-05-12", 7)},
			{ActivityID: "b", Name: "Harbor 10K race", Distance: 10600, StartDate: at("2024-05-12", 9)},
		}
		got, method := MatchActivity(competition, model.Category10K, activities)
		require.NotNil(t, got)
		assert.Equal(t, "b", got.ActivityID)
		assert.Equal(t, MatchMethodName, method)
	})

	t.Run("name match is case sensitive", func(t *testing.T) {
		activities := []*model.Activity{
			{ActivityID: "a", Name: "harbor 10k", Distance: 3000, StartDate: at("2024-05-12", 7)},
		}
		got, _ := MatchActivity(competition, model.Category10K, activities)
		assert.Nil(t, got)
	})

	t.Run("closest to midpoint wins", func(t *testing.T) {
		activities := []*model.Activity{
			{ActivityID: "far", Distance: 9300, StartDate: at("2024-05-12", 7)},
			{ActivityID: "near", Distance: 9800, StartDate: at("2024-05-12", 9)},
			{ActivityID: "out", Distance: 11000, StartDate: at("2024-05-12", 10)},
		}
		got, method := MatchActivity(competition, model.Category10K, activities)
		require.NotNil(t, got)
		assert.Equal(t, "near", got.ActivityID)
		assert.Equal(t, MatchMethodDistance, method)
	})

	t.Run("ties keep the first candidate", func(t *testing.T) {
		activities := []*model.Activity{
			{ActivityID: "first", Distance: 9900, StartDate: at("2024-05-12", 7)},
			{ActivityID: "second", Distance: 10100, StartDate: at("2024-05-12", 9)},
		}
		got, _ := MatchActivity(competition, model.Category10K, activities)
		require.NotNil(t, got)
		assert.Equal(t, "first", got.ActivityID)
	})

	t.Run("other local days are ignored", func(t *testing.T) {
		activities := []*model.Activity{
			// 23:30 local on the day before is 14:30 UTC on the day before
			{ActivityID: "eve", Name: "Harbor 10K", Distance: 10000, StartDate: localTime(t, "2024-05-11", 23, 30, 0)},
			{ActivityID: "next", Distance: 10000, StartDate: at("2024-05-13", 0)},
		}
		got, _ := MatchActivity(competition, model.Category10K, activities)
		assert.Nil(t, got)
	})

	t.Run("early local morning is the same day", func(t *testing.T) {
		// 00:10 local is 15:10 UTC on the previous calendar day
		start := localTime(t, "2024-05-12", 0, 10, 0)
		require.Equal(t, 11, start.UTC().Day())
		activities := []*model.Activity{
			{ActivityID: "dawn", Distance: 10050, StartDate: start},
		}
		got, _ := MatchActivity(competition, model.Category10K, activities)
		require.NotNil(t, got)
		assert.Equal(t, "dawn", got.ActivityID)
	})

	t.Run("unknown category has no fallback", func(t *testing.T) {
		activities := []*model.Activity{
			{ActivityID: "a", Distance: 10000, StartDate: at("2024-05-12", 7)},
		}
		got, _ := MatchActivity(competition, "Ultra", activities)
		assert.Nil(t, got)
	})
}

func newMatcherFixture(t *testing.T) (*Matcher, *repo.Competition, *model.User) {
	t.Helper()
	db := testentry.DB(t)
	competitionRepo := repo.NewCompetition(db)
	m := NewMatcher(competitionRepo, repo.NewActivity(db))
	m.now = fixedClock(localTime(t, "2024-05-20", 12, 0, 0))

	u := seedUser(t, db, "Runner", "1001")
	seedRun(t, db, u.ID, "Morning Run", 9300, 2900, localTime(t, "2024-05-12", 7, 0, 0))
	seedRun(t, db, u.ID, "Sunday Run", 9800, 2830, localTime(t, "2024-05-12", 9, 0, 0))
	// not a Run: never considered
	seedActivity(t, db, u.ID, "Ride", "Harbor 10K spin", 10000, 1200, localTime(t, "2024-05-12", 10, 0, 0))
	return m, competitionRepo, u
}

func TestMatchCompetitionResults(t *testing.T) {
	m, competitionRepo, _ := newMatcherFixture(t)
	ctx := context.Background()

	competition := &model.Competition{
		Date: "2024-05-12",
		Name: "Harbor 10K",
		Participants: []*model.CompetitionParticipant{
			{Name: "Runner", Category: model.Category10K, AthleteID: null.StringFrom("1001")},
			{Name: "Guest", Category: model.Category10K},
			{Name: "Stranger", Category: model.Category10K, AthleteID: null.StringFrom("9999")},
		},
	}
	require.NoError(t, competitionRepo.CreateCompetition(ctx, competition))

	got, err := m.MatchCompetitionResults(ctx, competition.ID)
	require.NoError(t, err)
	require.Len(t, got.Participants, 3)
	assert.Equal(t, "47:10", got.Participants[0].Result.String)
	assert.False(t, got.Participants[1].Result.Valid)
	assert.False(t, got.Participants[2].Result.Valid)

	stored, err := competitionRepo.GetCompetitionByID(ctx, competition.ID)
	require.NoError(t, err)
	assert.Equal(t, "47:10", stored.Participants[0].Result.String)
	matchedActivity := stored.Participants[0].ActivityID.String
	assert.NotEmpty(t, matchedActivity)

	again, err := m.MatchCompetitionResults(ctx, competition.ID)
	require.NoError(t, err)
	assert.Equal(t, "47:10", again.Participants[0].Result.String)
	assert.Equal(t, matchedActivity, again.Participants[0].ActivityID.String)
}

func TestMatchCompetitionOutlivesCancelledCaller(t *testing.T) {
	m, competitionRepo, _ := newMatcherFixture(t)

	competition := &model.Competition{
		Date: "2024-05-12",
		Name: "Harbor 10K",
		Participants: []*model.CompetitionParticipant{
			{Name: "Runner", Category: model.Category10K, AthleteID: null.StringFrom("1001")},
		},
	}
	require.NoError(t, competitionRepo.CreateCompetition(context.Background(), competition))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.MatchCompetition(ctx, competition)
	assert.Equal(t, "47:10", competition.Participants[0].Result.String)

	stored, err := competitionRepo.GetCompetitionByID(context.Background(), competition.ID)
	require.NoError(t, err)
	assert.Equal(t, "47:10", stored.Participants[0].Result.String)
}

func TestMatchCompetitionKeepsExistingResult(t *testing.T) {
	m, competitionRepo, _ := newMatcherFixture(t)
	ctx := context.Background()

	competition := &model.Competition{
		Date: "2024-05-12",
		Name: "Harbor 10K",
		Participants: []*model.CompetitionParticipant{
			{Name: "Runner", Category: model.Category10K, AthleteID: null.StringFrom("1001"), Result: null.StringFrom("45:00")},
		},
	}
	require.NoError(t, competitionRepo.CreateCompetition(ctx, competition))

	got, err := m.MatchCompetitionResults(ctx, competition.ID)
	require.NoError(t, err)
	assert.Equal(t, "45:00", got.Participants[0].Result.String)
	assert.False(t, got.Participants[0].ActivityID.Valid)
}

func TestMatchCompetitionSkipsFutureCompetition(t *testing.T) {
	m, competitionRepo, _ := newMatcherFixture(t)
	ctx := context.Background()
	m.now = fixedClock(localTime(t, "2024-05-11", 23, 59, 59))

	competition := &model.Competition{
		Date: "2024-05-12",
		Name: "Harbor 10K",
		Participants: []*model.CompetitionParticipant{
			{Name: "Runner", Category: model.Category10K, AthleteID: null.StringFrom("1001")},
		},
	}
	require.NoError(t, competitionRepo.CreateCompetition(ctx, competition))

	got, err := m.MatchCompetitionResults(ctx, competition.ID)
	require.NoError(t, err)
	assert.False(t, got.Participants[0].Result.Valid)

	// on the competition day itself it is eligible
	m.now = fixedClock(localTime(t, "2024-05-12", 0, 0, 0))
	got, err = m.MatchCompetitionResults(ctx, competition.ID)
	require.NoError(t, err)
	assert.Equal(t, "47:10", got.Participants[0].Result.String)
}

func TestMatchCompetitionResultsNotFound(t *testing.T) {
	m, _, _ := newMatcherFixture(t)
	_, err := m.MatchCompetitionResults(context.Background(), 404)
	assert.Error(t, err)
}
