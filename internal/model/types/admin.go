package types

import "gopkg.in/guregu/null.v3"

type PurgeCacheRequest struct {
	Pairs []PurgeCachePair `json:"pairs" validate:"required,min=1,dive"`
}

type PurgeCachePair struct {
	Name string      `json:"name" validate:"required"`
	Key  null.String `json:"key"`
}
