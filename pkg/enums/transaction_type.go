package enums

import "fmt"

// TransactionType classifies a row in the financial ledger.
type TransactionType string

const (
	TransactionTypeSale    TransactionType = "sale"
	TransactionTypeRefund  TransactionType = "refund"
	TransactionTypeExpense TransactionType = "expense"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeSale,
	TransactionTypeRefund,
	TransactionTypeExpense,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsIncome reports whether the type adds to revenue rather than subtracting.
func (t TransactionType) IsIncome() bool {
	return t == TransactionTypeSale
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
