package models

import (
	"time"

	"github.com/lib/pq"
)

type Position struct {
	BaseModel
	OwnerID        string `gorm:"type:uuid;not null;index"`
	Owner          *User  `gorm:"foreignKey:OwnerID"`
	Title          string `gorm:"not null"`
	Slug           string `gorm:"not null;uniqueIndex"`
	Description    string `gorm:"type:text;not null"`
	Location       string
	Remote         bool
	EmploymentType string
	SalaryMin      *int
	SalaryMax      *int
	Currency       string
	TechStack      pq.StringArray `gorm:"type:text[]"`
	Status         PositionStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Tier           ListingTier    `gorm:"type:varchar(20);not null;default:'regular'"`
	PublishedAt    *time.Time
	// nil - вакансия никогда не истекает автоматически
	ExpiresAt        *time.Time `gorm:"index"`
	PaymentReference *string
}

// positionTransitions - допустимые переходы статусов.
// published -> expired выполняет только sweep, см. PositionService.ExpirePositions.
var positionTransitions = map[PositionStatus][]PositionStatus{
	PositionStatusDraft:     {PositionStatusPublished, PositionStatusArchived},
	PositionStatusPublished: {PositionStatusExpired, PositionStatusArchived, PositionStatusDraft},
	PositionStatusExpired:   {PositionStatusPublished, PositionStatusArchived},
	PositionStatusArchived:  {PositionStatusDraft},
}

// CanTransition проверяет переход по таблице
func CanTransition(from, to PositionStatus) bool {
	for _, s := range positionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionSources - все статусы, из которых можно попасть в to.
// Используется как условие WHERE status IN (...) в CAS-обновлении.
func TransitionSources(to PositionStatus) []PositionStatus {
	var sources []PositionStatus
	for _, from := range []PositionStatus{PositionStatusDraft, PositionStatusPublished, PositionStatusExpired, PositionStatusArchived} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

func (p *Position) IsPublished() bool {
	return p.Status == PositionStatusPublished
}

// IsDue - истек ли срок размещения на момент now
func (p *Position) IsDue(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}
