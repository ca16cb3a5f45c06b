package types

type GiveGiftRequest struct {
	FromUserID int     `json:"fromUserId" validate:"required,gt=0"`
	ToUserID   int     `json:"toUserId" validate:"required,gt=0,nefield=FromUserID"`
	Distance   float64 `json:"distance" validate:"required,gt=0"`
}

type TargetAdjustment struct {
	UserID int     `json:"userId" validate:"required,gt=0"`
	Delta  float64 `json:"delta" validate:"required"`
}

type AdjustTargetsRequest struct {
	AdminUserID int                 `json:"adminUserId" validate:"required,gt=0"`
	Adjustments []*TargetAdjustment `json:"adjustments" validate:"required,min=1,max=100,dive,required"`
}

type GiftAvailability struct {
	UserID    int    `json:"userId"`
	Day       string `json:"day"`
	Available bool   `json:"available"`
	Remaining int    `json:"remaining"`
	MaxCount  int    `json:"maxCount"`
	UsedCount int    `json:"usedCount"`
}
