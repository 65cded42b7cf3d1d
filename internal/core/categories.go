package core

// Category identifiers are fixed per transaction kind. Interest
// transactions always carry CategoryInterest.
const (
	CategoryAllowance = "allowance"
	CategoryChore     = "chore"
	CategoryGift      = "gift"
	CategoryInterest  = "interest"
	CategorySpending  = "spending"
	CategoryTreat     = "treat"
	CategoryToy       = "toy"
	CategoryGame      = "game"
	CategoryOther     = "other"
)

var kindCategories = map[TransactionKind][]string{
	Deposit:    {CategoryAllowance, CategoryChore, CategoryGift, CategoryInterest, CategoryOther},
	Withdrawal: {CategorySpending, CategoryTreat, CategoryToy, CategoryGame, CategoryOther},
	Interest:   {CategoryInterest},
}

// Categories returns the allowed category identifiers for a kind, in
// display order. The returned slice must not be mutated.
func Categories(kind TransactionKind) []string {
	return kindCategories[kind]
}

// ValidCategory reports whether category is allowed for the given kind.
func ValidCategory(kind TransactionKind, category string) bool {
	for _, c := range kindCategories[kind] {
		if c == category {
			return true
		}
	}
	return false
}

// DefaultCategory is used when a caller omits the category field.
func DefaultCategory(kind TransactionKind) string {
	switch kind {
	case Interest:
		return CategoryInterest
	default:
		return CategoryOther
	}
}
