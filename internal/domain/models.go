package domain

import "time"

// ProcessLog is one accepted process-result submission.
type ProcessLog struct {
	UserID     int64     `db:"user_id"`
	ResultData string    `db:"result_data"`
	CreatedAt  time.Time `db:"created_at"`
}

// Fields returns the column mapping used for the insert.
func (p ProcessLog) Fields() map[string]any {
	return map[string]any{
		"user_id":     p.UserID,
		"result_data": p.ResultData,
		"created_at":  p.CreatedAt,
	}
}
