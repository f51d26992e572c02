package models

type Application struct {
	BaseModel
	PositionID  string            `gorm:"type:uuid;not null;uniqueIndex:idx_application_position_developer"`
	DeveloperID string            `gorm:"type:uuid;not null;uniqueIndex:idx_application_position_developer"`
	CoverLetter string            `gorm:"type:text"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending'"`

	Position  *Position `gorm:"foreignKey:PositionID"`
	Developer *User     `gorm:"foreignKey:DeveloperID"`
}

// applicationTransitions - решения HR по отклику
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:  {ApplicationStatusReviewed, ApplicationStatusAccepted, ApplicationStatusRejected},
	ApplicationStatusReviewed: {ApplicationStatusAccepted, ApplicationStatusRejected},
}

// ApplicationSources - статусы, из которых допустим переход в to
func ApplicationSources(to ApplicationStatus) []ApplicationStatus {
	var sources []ApplicationStatus
	for _, from := range []ApplicationStatus{ApplicationStatusPending, ApplicationStatusReviewed} {
		for _, s := range applicationTransitions[from] {
			if s == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}
