package persistence

import (
	"context"
	"fmt"
	"sync/atomic"

	"gorm.io/gorm"

	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/pkg/utils"
)

// GormMovementRepository is a GORM-based implementation of container.MovementRepository
type GormMovementRepository struct {
	db *gorm.DB
	// seq orders movements recorded within the same timestamp
	seq atomic.Int64
}

// NewGormMovementRepository creates a new movement repository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Record appends one movement. A movement without an ID gets a generated one.
func (r *GormMovementRepository) Record(ctx context.Context, m container.Movement) error {
	if m.ID == "" {
		m.ID = utils.GenerateID("mv", m.ContainerCode)
	}
	model := modelFromMovement(m)
	model.Seq = r.seq.Add(1)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to record movement of %s: %w", m.ContainerCode, err)
	}
	return nil
}

// Latest returns up to limit movements, newest first
func (r *GormMovementRepository) Latest(ctx context.Context, limit int) ([]container.Movement, error) {
	var models []MovementModel
	err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Order("seq DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movementsFromModels(models), nil
}

// ByCode returns up to limit movements of one container, newest first
func (r *GormMovementRepository) ByCode(ctx context.Context, code string, limit int) ([]container.Movement, error) {
	var models []MovementModel
	err := r.db.WithContext(ctx).
		Where("container_code = ?", code).
		Order("occurred_at DESC").
		Order("seq DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list movements of %s: %w", code, err)
	}
	return movementsFromModels(models), nil
}

// Count returns the number of recorded movements
func (r *GormMovementRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&MovementModel{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count movements: %w", err)
	}
	return n, nil
}

func modelFromMovement(m container.Movement) MovementModel {
	return MovementModel{
		ID:            m.ID,
		ContainerCode: m.ContainerCode,
		Kind:          string(m.Kind),
		FromLocation:  m.From,
		ToLocation:    m.To,
		OccurredAt:    m.At,
	}
}

func movementsFromModels(models []MovementModel) []container.Movement {
	out := make([]container.Movement, 0, len(models))
	for _, model := range models {
		out = append(out, container.Movement{
			ID:            model.ID,
			ContainerCode: model.ContainerCode,
			Kind:          container.MovementKind(model.Kind),
			From:          model.FromLocation,
			To:            model.ToLocation,
			At:            model.OccurredAt,
		})
	}
	return out
}
