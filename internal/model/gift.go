package model

import (
	"time"

	"github.com/uptrace/bun"
)

// GiftQuota is one user's allowance of gift transfers for one local day.
// UsedCount never exceeds MaxCount.
type GiftQuota struct {
	bun.BaseModel `bun:"gift_quotas,alias:gq"`

	UserID    int    `bun:",pk" json:"userId"`
	Day       string `bun:",pk" json:"day"`
	MaxCount  int    `bun:",notnull" json:"maxCount"`
	UsedCount int    `bun:",notnull" json:"usedCount"`
}

func (q *GiftQuota) Available() bool {
	return q.UsedCount < q.MaxCount
}

func (q *GiftQuota) Remaining() int {
	if q.UsedCount >= q.MaxCount {
		return 0
	}
	return q.MaxCount - q.UsedCount
}

// GiftLog is the append-only audit trail of target distance transfers.
type GiftLog struct {
	bun.BaseModel `bun:"gift_logs,alias:gl"`

	ID          int       `bun:",pk,autoincrement" json:"id"`
	ChallengeID int       `bun:",notnull" json:"challengeId"`
	FromUserID  int       `bun:",notnull" json:"fromUserId"`
	ToUserID    int       `bun:",notnull" json:"toUserId"`
	Distance    float64   `bun:",notnull" json:"distance"`
	CreatedAt   time.Time `bun:",notnull" json:"createdAt"`
}
