package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Cafe represents a single cafe listing
type Cafe struct {
	ID      uint    `json:"id" gorm:"primarykey"`
	Title   string  `json:"title" gorm:"type:varchar(255);not null;uniqueIndex:idx_cafes_title_address"`
	Address string  `json:"address" gorm:"type:text;not null;uniqueIndex:idx_cafes_title_address"`
	Picture *string `json:"picture" gorm:"type:text"`
	// Hours is a schemaless day-name -> time-range list document, stored
	// exactly as submitted (no day or time format validation). The column is
	// json rather than jsonb so key order survives the round trip.
	Hours     datatypes.JSON `json:"hours" gorm:"type:json"`
	Criteria  pq.StringArray `json:"criteria" gorm:"type:text[]"`
	CreatedAt time.Time      `json:"created_at"`
}
