package model

import (
	"time"

	"gorm.io/datatypes"
)

type Session struct {
	SessionID     string  `gorm:"type:text;primaryKey"`
	Question      string  `gorm:"type:text;not null"`
	BotResponse   *string `gorm:"type:text"`
	HumanResponse *string `gorm:"type:text"`
	Status        string  `gorm:"type:text;not null;index"`
	Meta          datatypes.JSON
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
