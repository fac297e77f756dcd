package storage

import (
	"time"

	"github.com/google/uuid"
)

// BoardSession is one shared board instance.
type BoardSession struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	FEN         string
	Orientation string
	LastSeen    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	History     []PositionRecord `gorm:"foreignKey:SessionID"`
}

// PositionRecord is one entry in a session's position history.
type PositionRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID uuid.UUID `gorm:"type:uuid;index"`
	Seq       int
	FEN       string
	CreatedAt time.Time
}
