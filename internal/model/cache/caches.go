package cache

import (
	"sync"

	"github.com/redis/go-redis/v9"
	"gopkg.in/guregu/null.v3"

	"runclub.dev/backend/internal/model"
	"runclub.dev/backend/internal/pkg/cache"
)

type Flusher func() error

var (
	// StatsByRange caches the leaderboard aggregate keyed by "start|end" (unix seconds).
	StatsByRange *cache.Set[[]*model.UserStats]

	// PersonalRecords caches a user's best efforts keyed by user id.
	PersonalRecords *cache.Set[[]*model.Activity]

	// Users is process-local and needs no redis, so it exists before Initialize.
	Users = cache.NewSingular[[]*model.User]("users")

	once sync.Once

	SetMap             map[string]Flusher
	SingularFlusherMap map[string]Flusher
)

func Initialize(client *redis.Client) {
	once.Do(func() {
		initializeCaches(client)
	})
}

// Delete flushes the named cache. A key narrows nothing for now: sets are always
// flushed whole since their keys are derived from request parameters.
func Delete(name string, key null.String) error {
	if f, ok := SetMap[name]; ok {
		return f()
	}
	if f, ok := SingularFlusherMap[name]; ok {
		return f()
	}
	return nil
}

// InvalidateActivityDerived drops every cache derived from activity rows.
// Called after a sync stored new activities.
func InvalidateActivityDerived() {
	if StatsByRange != nil {
		_ = StatsByRange.Flush()
	}
	if PersonalRecords != nil {
		_ = PersonalRecords.Flush()
	}
}

func initializeCaches(client *redis.Client) {
	SetMap = make(map[string]Flusher)
	SingularFlusherMap = make(map[string]Flusher)

	// stats
	StatsByRange = cache.NewSet[[]*model.UserStats](client, "stats#start|end")
	SetMap["stats#start|end"] = StatsByRange.Flush

	// records
	PersonalRecords = cache.NewSet[[]*model.Activity](client, "records#userId")
	SetMap["records#userId"] = PersonalRecords.Flush

	// users
	SingularFlusherMap["users"] = Users.Delete
}
