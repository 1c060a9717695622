package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Secret is a named credential kept across restarts.
type Secret struct {
	Name      string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// SecretRepository is a durable key-value store for credentials.
type SecretRepository interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put stores value under key, replacing any previous value in one statement.
	Put(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// gormSecretRepo is a GORM-backed implementation of SecretRepository.
// Use constructor NewSecretRepository to obtain an instance.
type gormSecretRepo struct{ db *gorm.DB }

// NewSecretRepository creates a SecretRepository. Accepts *gorm.DB to avoid global access.
func NewSecretRepository(db *gorm.DB) SecretRepository { return &gormSecretRepo{db: db} }

func (r *gormSecretRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if r.db == nil {
		return "", false, fmt.Errorf("repository not initialized")
	}
	var secret Secret
	err := r.db.WithContext(ctx).First(&secret, "name = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to read secret")
		return "", false, err
	}
	return secret.Value, true, nil
}

func (r *gormSecretRepo) Put(ctx context.Context, key, value string) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	if key == "" {
		return fmt.Errorf("secret key cannot be empty")
	}
	secret := Secret{Name: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&secret).Error
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to store secret")
		return err
	}
	log.Debug().Str("key", key).Msg("Secret stored")
	return nil
}

func (r *gormSecretRepo) Delete(ctx context.Context, key string) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	if err := r.db.WithContext(ctx).Delete(&Secret{}, "name = ?", key).Error; err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to delete secret")
		return err
	}
	return nil
}
