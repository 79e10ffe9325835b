package chatpod

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var _ TranscriptStore = (*PostgresTranscripts)(nil)

// PostgresTranscripts implements TranscriptStore on Postgres via GORM, for
// deployments that want the archive in shared infrastructure.
type PostgresTranscripts struct {
	db *gorm.DB
}

func NewPostgresTranscripts(dsn string) (*PostgresTranscripts, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&TranscriptEntry{}); err != nil {
		return nil, fmt.Errorf("migrate transcripts: %w", err)
	}
	return &PostgresTranscripts{db: db}, nil
}

func (p *PostgresTranscripts) Save(ctx context.Context, entry TranscriptEntry) error {
	if err := p.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

func (p *PostgresTranscripts) Recent(ctx context.Context, userID string, limit int) ([]TranscriptEntry, error) {
	var entries []TranscriptEntry
	err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	return entries, nil
}

func (p *PostgresTranscripts) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
