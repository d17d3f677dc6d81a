package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventStatusOK     = "ok"
	EventStatusFailed = "failed"
)

// Event — запись журнала изменений (создание/удаление устройств и пиров).
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	RequestID string         `gorm:"size:64" json:"request_id,omitempty"`
	Operation string         `gorm:"size:64;not null" json:"operation"`
	Device    string         `gorm:"size:16;index" json:"device"`
	Peer      string         `gorm:"size:64" json:"peer,omitempty"`
	Status    string         `gorm:"size:16" json:"status"`
	Message   string         `gorm:"size:512" json:"message,omitempty"`
	Detail    datatypes.JSON `json:"detail,omitempty"`
}

func (Event) TableName() string { return "wg_events" }
