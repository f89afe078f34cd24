package db_models

import (
	"gorm.io/datatypes"
)

// UserRole is a named permission bundle. The id doubles as the role name and
// the privilege-ordering key (see pkg/auth).
type UserRole struct {
	ID          string                       `gorm:"primaryKey"`
	Permissions datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt   int64                        `gorm:"autoCreateTime"`
	UpdatedAt   int64                        `gorm:"autoUpdateTime"`
}
