package domain

// Filter is the AND-composed set of exact-match predicates shared by the
// query engine and the dashboard aggregator. Empty fields impose no
// constraint.
type Filter struct {
	TransactionType TransactionType
	Category        string
	Status          TransactionStatus
	AccountNumber   string
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether a live transaction satisfies every set predicate.
func (f Filter) Matches(tx *Transaction) bool {
	if tx.IsDeleted {
		return false
	}
	if f.TransactionType != "" && tx.TransactionType != f.TransactionType {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	if f.AccountNumber != "" && tx.AccountNumber != f.AccountNumber {
		return false
	}
	return true
}

type SortKey string

const (
	SortByType      SortKey = "transaction_type"
	SortByCategory  SortKey = "category"
	SortByStatus    SortKey = "status"
	SortByTimestamp SortKey = "timestamp"
	SortByAmount    SortKey = "amount"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortByType, SortByCategory, SortByStatus, SortByTimestamp, SortByAmount:
		return true
	}
	return false
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

type Sort struct {
	Key       SortKey
	Direction SortDirection
}

// DefaultSort is newest-first; ties are always broken by transaction_id
// ascending so pagination sees a total order.
func DefaultSort() Sort {
	return Sort{Key: SortByTimestamp, Direction: SortDesc}
}

// Less orders two transactions under this sort, falling back to
// transaction_id ascending on equal keys.
func (s Sort) Less(a, b *Transaction) bool {
	var cmp int
	switch s.Key {
	case SortByType:
		cmp = compareStrings(string(a.TransactionType), string(b.TransactionType))
	case SortByCategory:
		cmp = compareStrings(a.Category, b.Category)
	case SortByStatus:
		cmp = compareStrings(string(a.Status), string(b.Status))
	case SortByAmount:
		cmp = a.Amount.Cmp(b.Amount)
	default:
		switch {
		case a.Timestamp.Before(b.Timestamp):
			cmp = -1
		case a.Timestamp.After(b.Timestamp):
			cmp = 1
		}
	}
	if cmp == 0 {
		return a.TransactionID < b.TransactionID
	}
	if s.Direction == SortDesc {
		return cmp > 0
	}
	return cmp < 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
