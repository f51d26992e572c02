package models

type UserRole string
type AccountState string
type PositionStatus string
type ListingTier string
type ApplicationStatus string
type PaymentStatus string
type OAuthProvider string

const (
	UserRoleDeveloper UserRole = "developer"
	UserRoleHR        UserRole = "hr"
	UserRoleAdmin     UserRole = "admin"

	AccountStateActive     AccountState = "active"
	AccountStateAnonymized AccountState = "anonymized"

	PositionStatusDraft     PositionStatus = "draft"
	PositionStatusPublished PositionStatus = "published"
	PositionStatusExpired   PositionStatus = "expired"
	PositionStatusArchived  PositionStatus = "archived"

	ListingTierRegular  ListingTier = "regular"
	ListingTierFeatured ListingTier = "featured"
	ListingTierTop      ListingTier = "top"

	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusReviewed ApplicationStatus = "reviewed"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"

	OAuthProviderGitHub   OAuthProvider = "github"
	OAuthProviderGoogle   OAuthProvider = "google"
	OAuthProviderLinkedIn OAuthProvider = "linkedin"
)

// SelectableRoles - роли, которые пользователь может выбрать сам.
// admin назначается только сидом.
var SelectableRoles = []UserRole{UserRoleDeveloper, UserRoleHR}

func (r UserRole) IsSelectable() bool {
	for _, s := range SelectableRoles {
		if r == s {
			return true
		}
	}
	return false
}

func (r UserRole) IsValid() bool {
	return r.IsSelectable() || r == UserRoleAdmin
}

func (s PositionStatus) IsValid() bool {
	switch s {
	case PositionStatusDraft, PositionStatusPublished, PositionStatusExpired, PositionStatusArchived:
		return true
	}
	return false
}

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewed, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// SupportedOAuthProviders - полный список, независимо от того, настроены ли ключи
var SupportedOAuthProviders = []OAuthProvider{OAuthProviderGitHub, OAuthProviderGoogle, OAuthProviderLinkedIn}

func (p OAuthProvider) IsSupported() bool {
	for _, s := range SupportedOAuthProviders {
		if p == s {
			return true
		}
	}
	return false
}
