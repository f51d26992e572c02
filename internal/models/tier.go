package models

// ListingTiers в порядке убывания приоритета показа
var ListingTiers = []ListingTier{ListingTierTop, ListingTierFeatured, ListingTierRegular}

func (t ListingTier) IsValid() bool {
	switch t {
	case ListingTierRegular, ListingTierFeatured, ListingTierTop:
		return true
	}
	return false
}

func (t ListingTier) IsFeatured() bool {
	return t == ListingTierFeatured
}

func (t ListingTier) IsTop() bool {
	return t == ListingTierTop
}

// IsSpecial - featured или top, такие вакансии выделяются в выдаче
func (t ListingTier) IsSpecial() bool {
	return t.IsFeatured() || t.IsTop()
}

// Rank используется для сортировки выдачи: top > featured > regular
func (t ListingTier) Rank() int {
	switch t {
	case ListingTierTop:
		return 2
	case ListingTierFeatured:
		return 1
	default:
		return 0
	}
}
