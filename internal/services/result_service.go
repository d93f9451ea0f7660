package services

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"studioapi/internal/domain"
)

type ProcessLogWriter interface {
	Append(ctx context.Context, p domain.ProcessLog)
}

type ResultService struct {
	Logs ProcessLogWriter
	Now  func() time.Time
}

func NewResultService(logs ProcessLogWriter) *ResultService {
	return &ResultService{Logs: logs, Now: time.Now}
}

// Record stores one result for userID. userID must come from a verified
// token. The write is fire-and-forget, so Record has nothing to report.
func (s *ResultService) Record(ctx context.Context, userID int64, result json.RawMessage) {
	s.Logs.Append(ctx, domain.ProcessLog{
		UserID:     userID,
		ResultData: ResultText(result),
		CreatedAt:  s.Now().UTC(),
	})
}

// ResultText turns the raw "result" member into the stored string: JSON
// strings are unquoted, absent values become "null", anything else is kept
// as compact JSON.
func ResultText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "null"
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
