package schema

import (
	"time"
)

// Beast represents the beasts table - immutable identity metadata assigned
// once when a token is first seen in a transfer and never mutated.
type Beast struct {
	// TokenID is the beast token id (primary key)
	TokenID uint64 `gorm:"column:token_id;primaryKey"`
	// BeastID identifies the species
	BeastID int32 `gorm:"column:beast_id;not null"`
	// Prefix is the first name-part index
	Prefix int32 `gorm:"column:prefix;not null"`
	// Suffix is the second name-part index
	Suffix int32 `gorm:"column:suffix;not null"`
	// Shiny indicates the shiny cosmetic variant
	Shiny bool `gorm:"column:shiny;not null;default:false"`
	// Animated indicates the animated cosmetic variant
	Animated bool `gorm:"column:animated;not null;default:false"`
	// CreatedAt is the timestamp when this record was first indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Beast model
func (Beast) TableName() string {
	return "beasts"
}

// BeastOwner represents the beast_owners table - the latest known owner per
// token, last-write-wins within a block.
type BeastOwner struct {
	// TokenID is the beast token id (primary key)
	TokenID uint64 `gorm:"column:token_id;primaryKey"`
	// Owner is the owning address in canonical hex form
	Owner string `gorm:"column:owner;not null;type:text;index"`
	// BlockNumber is the block of the transfer that set this owner
	BlockNumber uint64 `gorm:"column:block_number;not null"`
	// UpdatedAt is the timestamp when ownership was last written
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the BeastOwner model
func (BeastOwner) TableName() string {
	return "beast_owners"
}
