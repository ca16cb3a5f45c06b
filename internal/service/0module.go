package service

import (
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("service", fx.Provide(
		NewUser,
		NewGift,
		NewSync,
		NewHealth,
		NewMatcher,
		NewArchive,
		NewActivity,
		NewChallenge,
		NewCompetition,
		NewStoredTokenProvider,
	))
}
