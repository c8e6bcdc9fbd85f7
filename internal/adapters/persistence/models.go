package persistence

import (
	"time"
)

// MovementModel represents the container_movements table
type MovementModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Seq           int64     `gorm:"column:seq;index"`
	ContainerCode string    `gorm:"column:container_code;not null;index"`
	Kind          string    `gorm:"column:kind;not null"`
	FromLocation  string    `gorm:"column:from_location"`
	ToLocation    string    `gorm:"column:to_location"`
	OccurredAt    time.Time `gorm:"column:occurred_at;not null;index"`
}

func (MovementModel) TableName() string {
	return "container_movements"
}
