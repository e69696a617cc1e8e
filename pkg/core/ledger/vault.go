package ledger

import (
	"github.com/shopspring/decimal"
)

// Vault identifies one of the seven ledgers that partition the business's
// cash. The set is closed; producers must not invent new identifiers.
type Vault string

const (
	VaultCost      Vault = "boveda_monte" // cost-recovery vault
	VaultUS        Vault = "boveda_usa"
	VaultProfit    Vault = "profit"
	VaultLeftie    Vault = "leftie"
	VaultAzteca    Vault = "azteca"
	VaultFreight   Vault = "flete_sur"
	VaultUtilities Vault = "utilidades" // profit side of the distribution trio
)

// AllVaults returns the closed ledger set in its canonical order.
func AllVaults() []Vault {
	return []Vault{
		VaultCost, VaultUS, VaultProfit, VaultLeftie,
		VaultAzteca, VaultFreight, VaultUtilities,
	}
}

// Valid reports whether v names one of the seven ledgers.
func (v Vault) Valid() bool {
	for _, known := range AllVaults() {
		if v == known {
			return true
		}
	}
	return false
}

// BankAccount is the counter pair backing one vault. The historical
// counters are append-only: corrections post compensating entries, they
// never reduce a counter.
type BankAccount struct {
	Vault             Vault           `json:"vault"`
	HistoricalIncome  decimal.Decimal `json:"historical_income"`
	HistoricalExpense decimal.Decimal `json:"historical_expense"`
}

// CurrentCapital is always derived from the counters, never stored
// independently of them.
func (a BankAccount) CurrentCapital() decimal.Decimal {
	return ComputeCapital(a.HistoricalIncome, a.HistoricalExpense)
}
