package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/rcerr"
	"runclub.dev/backend/internal/pkg/testentry"
	"runclub.dev/backend/internal/repo"
)

func TestGetPersonalRecords(t *testing.T) {
	db := testentry.DB(t)
	ctx := context.Background()
	s := NewActivity(repo.NewActivity(db), repo.NewUser(db), testConfig())

	u := seedUser(t, db, "Eve", "5001")
	day := localTime(t, "2024-04-01", 7, 0, 0)
	seedRun(t, db, u.ID, "slow 5k", 5000, 1800, day)
	seedRun(t, db, u.ID, "fast 5k", 5400, 1500, day.Add(24*time.Hour))
	seedRun(t, db, u.ID, "too long for 5k", 5600, 1200, day.Add(48*time.Hour))
	seedRun(t, db, u.ID, "half", 21100, 6300, day.Add(72*time.Hour))
	seedActivity(t, db, u.ID, "Ride", "fast ride", 5000, 600, day)

	records, err := s.GetPersonalRecords(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "5K", records[0].Label)
	assert.Equal(t, "fast 5k", records[0].Name)
	assert.Equal(t, "25:00", records[0].Time)

	assert.Equal(t, "Half", records[1].Label)
	assert.Equal(t, "1:45:00", records[1].Time)

	_, err = s.GetPersonalRecords(ctx, u.ID+1)
	assert.ErrorIs(t, err, rcerr.ErrNotFound)
}

func TestGetRecentActivitiesLimit(t *testing.T) {
	db := testentry.DB(t)
	ctx := context.Background()
	s := NewActivity(repo.NewActivity(db), repo.NewUser(db), testConfig())

	u := seedUser(t, db, "Finn", "5002")
	require.NoError(t, repo.NewUser(db).UpdateNickname(ctx, u.ID, "F"))
	base := localTime(t, "2024-04-01", 7, 0, 0)
	for i := 0; i < 25; i++ {
		seedRun(t, db, u.ID, "run", 5000, 1500, base.Add(time.Duration(i)*time.Hour))
	}

	recent, err := s.GetRecentActivities(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, DefaultRecentLimit)
	assert.Equal(t, "F", recent[0].UserName)
	assert.True(t, recent[0].StartDate.After(recent[1].StartDate))
	assert.InDelta(t, 300.0, recent[0].PaceSeconds, 1e-9)

	recent, err = s.GetRecentActivities(ctx, 1000)
	require.NoError(t, err)
	assert.Len(t, recent, 25)
}

func TestGetStatsDefaults(t *testing.T) {
	db := testentry.DB(t)
	ctx := context.Background()
	s := NewActivity(repo.NewActivity(db), repo.NewUser(db), testConfig())
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
	s.now = fixedClock(now)

	start, end := s.StatsRange(&types.StatsQuery{})
	assert.Equal(t, now, end)
	assert.Equal(t, now.Add(-30*24*time.Hour), start)

	a := seedUser(t, db, "Gus", "5003")
	b := seedUser(t, db, "Hal", "5004")
	seedRun(t, db, a.ID, "in", 5000, 1500, now.Add(-24*time.Hour))
	seedRun(t, db, b.ID, "in", 8000, 2400, now.Add(-48*time.Hour))
	seedRun(t, db, b.ID, "in", 2000, 600, now.Add(-72*time.Hour))
	seedRun(t, db, a.ID, "too old", 50000, 15000, now.Add(-40*24*time.Hour))

	stats, err := s.GetStats(ctx, &types.StatsQuery{})
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, b.ID, stats[0].UserID)
	assert.Equal(t, 2, stats[0].ActivityCount)
	assert.InDelta(t, 10000.0, stats[0].TotalDistance, 1e-9)
	assert.Equal(t, a.ID, stats[1].UserID)
}

func TestCreateManualActivity(t *testing.T) {
	db := testentry.DB(t)
	ctx := context.Background()
	s := NewActivity(repo.NewActivity(db), repo.NewUser(db), testConfig())
	u := seedUser(t, db, "Ivy", "5005")

	a, err := s.CreateManualActivity(ctx, &types.CreateActivityRequest{UserID: u.ID, Distance: 5000, MovingTime: 1500})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.ActivityID, "manual_"))
	assert.Equal(t, "Run", a.Type)

	activities, err := s.GetActivitiesByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, activities, 1)

	_, err = s.CreateManualActivity(ctx, &types.CreateActivityRequest{UserID: u.ID + 10, Distance: 5000, MovingTime: 1500})
	assert.ErrorIs(t, err, rcerr.ErrNotFound)
}
