package types

const (
	SyncModeAuto        = "auto"
	SyncModeFull        = "full"
	SyncModeIncremental = "incremental"
)

type SyncRequest struct {
	UserID int    `json:"userId" validate:"required,gt=0"`
	Mode   string `json:"mode" validate:"omitempty,oneof=auto full incremental"`
}

type SyncAllRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=auto full incremental"`
}

type SyncResult struct {
	UserID          int    `json:"userId"`
	Mode            string `json:"mode"`
	SyncedCount     int    `json:"syncedCount"`
	TotalActivities int    `json:"totalActivities"`
}

// SyncTask is the message body published to SYNC.* subjects.
type SyncTask struct {
	TaskID    string `json:"taskId"`
	UserID    int    `json:"userId"`
	Mode      string `json:"mode"`
	CreatedAt int64  `json:"createdAt"`
}
