package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Row synthesis is deterministic: record i of a category is a pure
// function of (category, i). Clients rely on that to page with a plain
// row count instead of cursors, because a bigger slice is always a
// superset of the smaller one.

// Operation is one synthetic ledger entry.
type Operation struct {
	ID          uuid.UUID       `json:"id" validate:"required"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	Description string          `json:"description" validate:"required"`
	Category    string          `json:"category" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Currency    string          `json:"currency" validate:"required,iso4217"`
	Status      string          `json:"status" validate:"required,oneof=settled pending declined"`
}

// User is one synthetic account holder.
type User struct {
	ID       uuid.UUID       `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Email    string          `json:"email" validate:"required,email"`
	Country  string          `json:"country" validate:"required,iso3166_1_alpha2"`
	JoinedAt string          `json:"joined_at" validate:"required,datetime=2006-01-02"`
	Balance  decimal.Decimal `json:"balance"`
	Active   bool            `json:"active"`
}

var rowAnchor = time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)

var (
	opDescriptions = []string{
		"Card payment", "Wire transfer", "Direct debit", "Standing order",
		"ATM withdrawal", "Merchant refund", "FX conversion", "Account fee",
	}
	opCategories = []string{"transfer", "payment", "fee", "refund", "payout"}
	opCurrencies = []string{"USD", "EUR", "GBP"}
	opStatuses   = []string{"settled", "settled", "settled", "pending", "declined"}

	userFirstNames = []string{
		"Ada", "Bruno", "Clara", "Dmitri", "Elena", "Farid", "Greta", "Hugo",
		"Ines", "Jonas", "Karin", "Leo", "Mira", "Noel", "Olga", "Pavel",
	}
	userLastNames = []string{
		"Almeida", "Bergman", "Castro", "Dubois", "Eriksen", "Fischer",
		"Gruber", "Haddad", "Ivanov", "Jensen", "Keller", "Lindqvist",
	}
	userCountries = []string{"US", "DE", "FR", "ES", "SE", "NL", "PL", "PT"}
)

type rowRand struct{ state uint64 }

func newRowRand(cat RowCategory, index int) *rowRand {
	state := uint64(index)*0x9e3779b97f4a7c15 + 0x2545f4914f6cdd1d
	for _, b := range []byte(cat) {
		state ^= uint64(b)
		state *= 0xbf58476d1ce4e5b9
	}
	if state == 0 {
		state = 1
	}
	return &rowRand{state: state}
}

func (r *rowRand) next() uint64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 7
	r.state ^= r.state << 17
	return r.state
}

func (r *rowRand) pick(options []string) string {
	return options[r.next()%uint64(len(options))]
}

// cents returns an amount in [lo, hi) with two decimal places.
func (r *rowRand) cents(lo, hi int64) decimal.Decimal {
	span := uint64(hi-lo) * 100
	return decimal.New(lo*100+int64(r.next()%span), -2)
}

// OperationAt synthesizes ledger entry i. Entries walk back one day per
// index from a fixed anchor so ordering reads newest first.
func OperationAt(i int) Operation {
	r := newRowRand(RowsOperations, i)
	return Operation{
		ID:          uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("OP:%d", i))),
		Date:        rowAnchor.AddDate(0, 0, -i).Format("2006-01-02"),
		Description: r.pick(opDescriptions),
		Category:    r.pick(opCategories),
		Amount:      r.cents(5, 2500),
		Currency:    r.pick(opCurrencies),
		Status:      r.pick(opStatuses),
	}
}

// UserAt synthesizes account holder i.
func UserAt(i int) User {
	r := newRowRand(RowsUsers, i)
	first := r.pick(userFirstNames)
	last := r.pick(userLastNames)
	return User{
		ID:       uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("USR:%d", i))),
		Name:     first + " " + last,
		Email:    fmt.Sprintf("%s.%s.%d@example.net", strings.ToLower(first), strings.ToLower(last), i),
		Country:  r.pick(userCountries),
		JoinedAt: rowAnchor.AddDate(0, 0, -3*i).Format("2006-01-02"),
		Balance:  r.cents(0, 90000),
		Active:   r.next()%5 != 0,
	}
}
