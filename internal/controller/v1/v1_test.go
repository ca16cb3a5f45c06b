package v1

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"runclub.dev/backend/internal/app/appconfig"
	"runclub.dev/backend/internal/constant"
	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/model/types"
	"runclub.dev/backend/internal/pkg/localday"
	"runclub.dev/backend/internal/pkg/testentry"
	"runclub.dev/backend/internal/repo"
	"runclub.dev/backend/internal/server/httpserver"
	"runclub.dev/backend/internal/server/svr"
	"runclub.dev/backend/internal/service"
)

const adminKey = "s3cret"

type testApp struct {
	app *fiber.App
	db  *bun.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := testentry.DB(t)
	conf := &appconfig.Config{ConfigSpec: appconfig.ConfigSpec{
		AdminKey:      adminKey,
		GiftQuotaMax:  3,
		StatsCacheTTL: time.Minute,
	}}

	userRepo := repo.NewUser(db)
	activityRepo := repo.NewActivity(db)
	competitionRepo := repo.NewCompetition(db)
	challengeRepo := repo.NewChallenge(db)
	giftRepo := repo.NewGift(db)

	userService := service.NewUser(userRepo)
	activityService := service.NewActivity(activityRepo, userRepo, conf)
	competitionService := service.NewCompetition(competitionRepo, service.NewMatcher(competitionRepo, activityRepo))
	challengeService := service.NewChallenge(challengeRepo, activityRepo, userRepo, giftRepo)
	giftService := service.NewGift(db, giftRepo, challengeRepo, userRepo, conf)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	app := fiber.New(fiber.Config{ErrorHandler: httpserver.ErrorHandler})
	v1, admin, _ := svr.CreateEndpointGroups(app, conf)

	RegisterUser(v1, User{Config: conf, UserService: userService, ActivityService: activityService})
	RegisterActivity(v1, Activity{Config: conf, ActivityService: activityService})
	RegisterCompetition(v1, Competition{Config: conf, CompetitionService: competitionService})
	RegisterChallenge(v1, Challenge{Config: conf, ChallengeService: challengeService})
	RegisterGift(v1, Gift{
		GiftService: giftService,
		Redis:       redisClient,
		RedSync:     redsync.New(goredis.NewPool(redisClient)),
	})
	RegisterAdmin(admin, Admin{CompetitionService: competitionService, GiftService: giftService})

	return &testApp{app: app, db: db}
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers ...string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func (a *testApp) seedUser(t *testing.T, name, stravaID string) *model.User {
	t.Helper()
	u := &model.User{Name: name, StravaID: stravaID}
	require.NoError(t, repo.NewUser(a.db).CreateUser(context.Background(), u))
	return u
}

func (a *testApp) seedChallenge(t *testing.T, start, end string, targets map[int]float64) *model.Challenge {
	t.Helper()
	ctx := context.Background()
	r := repo.NewChallenge(a.db)
	ch := &model.Challenge{Name: "Autumn Mileage", StartDate: start, EndDate: end}
	require.NoError(t, r.CreateChallenge(ctx, ch))
	for userID, target := range targets {
		require.NoError(t, r.JoinChallenge(ctx, &model.ChallengeParticipant{
			ChallengeID:    ch.ID,
			UserID:         userID,
			TargetDistance: target,
		}))
	}
	return ch
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Code
}

func TestChallengeProgressSortedByPercent(t *testing.T) {
	a := newTestApp(t)
	slow := a.seedUser(t, "Slow", "7001")
	fast := a.seedUser(t, "Fast", "7002")
	idle := a.seedUser(t, "Idle", "7003")
	ch := a.seedChallenge(t, "2024-06-01", "2024-06-30", map[int]float64{
		slow.ID: 100,
		fast.ID: 10,
		idle.ID: 50,
	})

	start, err := localday.StartOf("2024-06-10")
	require.NoError(t, err)
	activities := repo.NewActivity(a.db)
	for i, run := range []struct {
		userID   int
		distance float64
	}{{slow.ID, 5000}, {fast.ID, 8000}} {
		require.NoError(t, activities.UpsertActivity(context.Background(), &model.Activity{
			UserID:     run.userID,
			ActivityID: "ctl-" + strconv.Itoa(i),
			Name:       "Morning Run",
			Type:       model.ActivityTypeRun,
			Distance:   run.distance,
			MovingTime: 1800,
			StartDate:  start.Add(7 * time.Hour),
		}))
	}

	status, body := a.do(t, fiber.MethodGet, "/api/v1/challenges/"+strconv.Itoa(ch.ID)+"/progress", nil)
	require.Equal(t, http.StatusOK, status)

	var progress []*types.ChallengeProgress
	require.NoError(t, json.Unmarshal(body, &progress))
	require.Len(t, progress, 3)
	assert.Equal(t, fast.ID, progress[0].UserID)
	assert.Equal(t, 80, progress[0].ProgressPercent)
	assert.Equal(t, slow.ID, progress[1].UserID)
	assert.Equal(t, 5, progress[1].ProgressPercent)
	assert.Equal(t, idle.ID, progress[2].UserID)
	assert.Equal(t, 0, progress[2].ProgressPercent)
}

func TestUnknownChallengeProgressIsEmpty(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, fiber.MethodGet, "/api/v1/challenges/404/progress", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))
}

func TestAdminRoutesRequireKey(t *testing.T) {
	a := newTestApp(t)
	request := types.CreateChallengeRequest{Name: "Winter", StartDate: "2024-12-01", EndDate: "2024-12-31"}

	status, body := a.do(t, fiber.MethodPost, "/api/v1/challenges", request)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))

	status, _ = a.do(t, fiber.MethodPost, "/api/v1/challenges", request, constant.AdminKeyHeader, adminKey)
	assert.Equal(t, http.StatusCreated, status)

	status, _ = a.do(t, fiber.MethodPost, "/api/v1/admin/purge", types.PurgeCacheRequest{
		Pairs: []types.PurgeCachePair{{Name: "users"}},
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCreateChallengeValidation(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, fiber.MethodPost, "/api/v1/challenges",
		types.CreateChallengeRequest{Name: "Broken", StartDate: "2024-13-01", EndDate: "2024-12-31"},
		constant.AdminKeyHeader, adminKey)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, body))
	assert.Contains(t, string(body), "violations")
}

func TestGiveGift(t *testing.T) {
	a := newTestApp(t)
	from := a.seedUser(t, "Giver", "7101")
	to := a.seedUser(t, "Taker", "7102")
	ch := a.seedChallenge(t, "2024-01-01", "2030-12-31", map[int]float64{from.ID: 10, to.ID: 20})

	gifts := repo.NewGift(a.db)
	_, err := gifts.GetOrCreateQuota(context.Background(), a.db, from.ID, localday.Today(time.Now()), 1)
	require.NoError(t, err)

	path := "/api/v1/challenges/" + strconv.Itoa(ch.ID) + "/gifts"
	request := types.GiveGiftRequest{FromUserID: from.ID, ToUserID: to.ID, Distance: 2.5}

	status, body := a.do(t, fiber.MethodPost, path, request)
	require.Equal(t, http.StatusCreated, status, string(body))
	var log model.GiftLog
	require.NoError(t, json.Unmarshal(body, &log))
	assert.Equal(t, 2.5, log.Distance)

	participant, err := repo.NewChallenge(a.db).GetParticipant(context.Background(), a.db, ch.ID, from.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.5, participant.TargetDistance)

	status, body = a.do(t, fiber.MethodPost, path, request)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "GIFT_QUOTA_EXHAUSTED", errorCode(t, body))

	status, body = a.do(t, fiber.MethodGet, "/api/v1/gifts/availability/"+strconv.Itoa(from.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var availability types.GiftAvailability
	require.NoError(t, json.Unmarshal(body, &availability))
	assert.False(t, availability.Available)
	assert.Equal(t, 1, availability.UsedCount)
}

func TestGiveGiftWithIdempotencyKeyAppliesOnce(t *testing.T) {
	a := newTestApp(t)
	from := a.seedUser(t, "Giver", "7151")
	to := a.seedUser(t, "Taker", "7152")
	ch := a.seedChallenge(t, "2024-01-01", "2030-12-31", map[int]float64{from.ID: 10, to.ID: 20})

	_, err := repo.NewGift(a.db).GetOrCreateQuota(context.Background(), a.db, from.ID, localday.Today(time.Now()), 3)
	require.NoError(t, err)

	path := "/api/v1/challenges/" + strconv.Itoa(ch.ID) + "/gifts"
	request := types.GiveGiftRequest{FromUserID: from.ID, ToUserID: to.ID, Distance: 2.5}

	status, first := a.do(t, fiber.MethodPost, path, request, constant.IdempotencyKeyHeader, "retry-me")
	require.Equal(t, http.StatusCreated, status, string(first))
	status, again := a.do(t, fiber.MethodPost, path, request, constant.IdempotencyKeyHeader, "retry-me")
	require.Equal(t, http.StatusCreated, status, string(again))
	assert.JSONEq(t, string(first), string(again))

	participant, err := repo.NewChallenge(a.db).GetParticipant(context.Background(), a.db, ch.ID, to.ID)
	require.NoError(t, err)
	assert.Equal(t, 22.5, participant.TargetDistance)

	request.Distance = 1
	status, body := a.do(t, fiber.MethodPost, path, request, constant.IdempotencyKeyHeader, "retry-me")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, body))
}

func TestGiveGiftRejectsSelfTransfer(t *testing.T) {
	a := newTestApp(t)
	u := a.seedUser(t, "Solo", "7201")
	ch := a.seedChallenge(t, "2024-01-01", "2030-12-31", map[int]float64{u.ID: 10})

	status, body := a.do(t, fiber.MethodPost, "/api/v1/challenges/"+strconv.Itoa(ch.ID)+"/gifts",
		types.GiveGiftRequest{FromUserID: u.ID, ToUserID: u.ID, Distance: 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, body))
}

func TestAdminAdjustTargets(t *testing.T) {
	a := newTestApp(t)
	coach := a.seedUser(t, "Coach", "7301")
	runner := a.seedUser(t, "Runner", "7302")
	ch := a.seedChallenge(t, "2024-01-01", "2030-12-31", map[int]float64{runner.ID: 10})

	status, body := a.do(t, fiber.MethodPost, "/api/v1/admin/challenges/"+strconv.Itoa(ch.ID)+"/adjustments",
		types.AdjustTargetsRequest{
			AdminUserID: coach.ID,
			Adjustments: []*types.TargetAdjustment{{UserID: runner.ID, Delta: -4}},
		},
		constant.AdminKeyHeader, adminKey)
	require.Equal(t, http.StatusCreated, status, string(body))

	participant, err := repo.NewChallenge(a.db).GetParticipant(context.Background(), a.db, ch.ID, runner.ID)
	require.NoError(t, err)
	assert.Equal(t, 6.0, participant.TargetDistance)
}

func TestNotFoundAndBadParams(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, fiber.MethodGet, "/api/v1/competitions/999", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	status, body = a.do(t, fiber.MethodGet, "/api/v1/competitions/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, body))

	status, _ = a.do(t, fiber.MethodGet, "/api/v1/activities/recent?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUserLifecycle(t *testing.T) {
	a := newTestApp(t)

	status, body := a.do(t, fiber.MethodPost, "/api/v1/users",
		types.CreateUserRequest{Name: "Kim", StravaID: "123456", AccessToken: "token"},
		constant.AdminKeyHeader, adminKey)
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.NotContains(t, string(body), "token")

	var created types.UserResponse
	require.NoError(t, json.Unmarshal(body, &created))

	status, body = a.do(t, fiber.MethodPatch, "/api/v1/users/"+strconv.Itoa(created.ID)+"/nickname",
		types.UpdateNicknameRequest{Nickname: "Speedy"})
	require.Equal(t, http.StatusOK, status)
	var updated types.UserResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Speedy", updated.DisplayName)

	status, _ = a.do(t, fiber.MethodDelete, "/api/v1/users/"+strconv.Itoa(created.ID), nil,
		constant.AdminKeyHeader, adminKey)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = a.do(t, fiber.MethodGet, "/api/v1/users/"+strconv.Itoa(created.ID)+"/records", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStatsQuery(t *testing.T) {
	q, err := statsQuery("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	from, _ := localday.StartOf("2024-03-01")
	until, _ := localday.StartOf("2024-04-01")
	assert.True(t, from.Equal(q.Start))
	assert.True(t, until.Equal(q.End))

	q, err = statsQuery("", "")
	require.NoError(t, err)
	assert.True(t, q.Start.IsZero())
	assert.True(t, q.End.IsZero())

	_, err = statsQuery("2024-03-31", "2024-03-01")
	assert.Error(t, err)
	_, err = statsQuery("yesterday", "")
	assert.Error(t, err)
}
