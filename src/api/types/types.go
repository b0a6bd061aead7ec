package types

import "time"

// News sources and their credibility weights
type Source struct {
	ID        uint32  `gorm:"primaryKey"`
	Domain    string  `gorm:"size:128;unique;not null"`
	Score     float64 `gorm:"not null"`
	Active    bool    `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Accounts are anonymous sessions holding a token balance
type Account struct {
	ID         string `gorm:"primaryKey;size:36"`
	Tokens     int    `gorm:"not null;default:20"`
	Plan       string `gorm:"size:16;not null;default:free"`
	APIKeyHash string `gorm:"size:128"`
	Admin      bool   `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Checks     []Check `gorm:"foreignKey:AccountID"`
}

// Finished fact checks
type Check struct {
	ID         string `gorm:"primaryKey;size:36"`
	AccountID  string `gorm:"index;size:36;not null"`
	Claim      string `gorm:"type:text;not null"`
	Region     string `gorm:"size:8"`
	Verdict    string `gorm:"size:16;not null"`
	Confidence float64
	Engine     string `gorm:"size:16"`
	Provider   string `gorm:"size:32"`
	Sources    int
	Degraded   bool   `gorm:"default:false"`
	Payload    string `gorm:"type:mediumtext"`
	CreatedAt  time.Time
	Account    Account `gorm:"foreignKey:AccountID"`
}

// Follow-up questions asked about a check
type Question struct {
	ID        uint64 `gorm:"primaryKey"`
	CheckID   string `gorm:"index;size:36;not null"`
	Body      string `gorm:"type:text;not null"`
	Answer    string `gorm:"type:text"`
	CreatedAt time.Time
	Check     Check `gorm:"foreignKey:CheckID"`
}

// Runtime settings
type Setting struct {
	ID     uint8  `gorm:"primaryKey"`
	Name   string `gorm:"size:32;not null"`
	Value  string `gorm:"type:text;not null"`
	Active uint8  `gorm:"not null"`
}
