package chatpod

import (
	"context"
	"time"
)

// TranscriptEntry is one completed turn persisted to the archive. The
// archive is observability data, not session state: sessions themselves stay
// in memory and die with the process.
type TranscriptEntry struct {
	ID        string `gorm:"primaryKey"`
	TurnID    string
	UserID    string `gorm:"index:idx_transcripts_user"`
	Model     string
	Prompt    string
	Answer    string
	CreatedAt time.Time `gorm:"index:idx_transcripts_user"`
}

func (TranscriptEntry) TableName() string {
	return "transcripts"
}

// TranscriptStore archives completed turns.
type TranscriptStore interface {
	Save(ctx context.Context, entry TranscriptEntry) error
	Recent(ctx context.Context, userID string, limit int) ([]TranscriptEntry, error)
	Close() error
}

// NoopTranscripts discards everything. Used when no archive is configured.
type NoopTranscripts struct{}

var _ TranscriptStore = NoopTranscripts{}

func (NoopTranscripts) Save(context.Context, TranscriptEntry) error {
	return nil
}

func (NoopTranscripts) Recent(context.Context, string, int) ([]TranscriptEntry, error) {
	return nil, nil
}

func (NoopTranscripts) Close() error {
	return nil
}
