package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/pkg/testentry"
)

func TestGetOrCreateQuotaConcurrentFirstCalls(t *testing.T) {
	db := testentry.DB(t)
	ctx := context.Background()
	r := NewGift(db)

	var wg sync.WaitGroup
	maxes := make([]int, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q, err := r.GetOrCreateQuota(ctx, db, 1, "2024-05-01", i%4)
			if assert.NoError(t, err) {
				maxes[i] = q.MaxCount
			}
		}(i)
	}
	wg.Wait()

	n, err := db.NewSelect().Model((*model.GiftQuota)(nil)).Where("user_id = ?", 1).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for _, m := range maxes[1:] {
		assert.Equal(t, maxes[0], m, "every caller sees the same rolled max")
	}
}

func TestConsumeQuotaStopsAtMax(t *testing.T) {
	db := testentry.DB(t)
	ctx := context.Background()
	r := NewGift(db)

	_, err := r.GetOrCreateQuota(ctx, db, 7, "2024-05-01", 2)
	require.NoError(t, err)

	for i, want := range []bool{true, true, false, false} {
		ok, err := r.ConsumeQuota(ctx, db, 7, "2024-05-01")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "consume #%d", i+1)
	}

	q, err := r.GetOrCreateQuota(ctx, db, 7, "2024-05-01", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, q.MaxCount)
	assert.Equal(t, 2, q.UsedCount)

	ok, err := r.ConsumeQuota(ctx, db, 7, "2024-05-02")
	require.NoError(t, err)
	assert.False(t, ok, "no row for another day")
}

func TestGiftLogsInRange(t *testing.T) {
	db := testentry.DB(t)
	ctx := context.Background()
	r := NewGift(db)

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.CreateLog(ctx, db, &model.GiftLog{
			ChallengeID: 1, FromUserID: 1, ToUserID: 2, Distance: float64(i + 1),
			CreatedAt: base.Add(time.Duration(i) * 12 * time.Hour),
		}))
	}

	var got []float64
	err := r.GetLogsInRange(ctx, base, base.Add(24*time.Hour), func(l *model.GiftLog) error {
		got = append(got, l.Distance)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got)

	logs, err := r.GetLogsByChallengeID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, 3.0, logs[0].Distance)
}
