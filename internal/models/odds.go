package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BookLine is one sportsbook's prices for a game. A zero moneyline means
// the book does not quote that side.
type BookLine struct {
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	HomeML int      `json:"home_ml,omitempty"`
	AwayML int      `json:"away_ml,omitempty"`
	Total  *float64 `json:"total,omitempty"`
}

type OddsSnapshot struct {
	HomeML            int             `json:"home_ml"`
	AwayML            int             `json:"away_ml"`
	HomeBook          string          `json:"home_book"`
	AwayBook          string          `json:"away_book"`
	Total             *float64        `json:"total,omitempty"`
	Books             []BookLine      `json:"books"`
	BookCount         int             `json:"book_count"`
	Estimated         bool            `json:"estimated"`
	HomeImplied       decimal.Decimal `json:"home_implied"`
	AwayImplied       decimal.Decimal `json:"away_implied"`
	Overround         decimal.Decimal `json:"overround"`
	RequestsRemaining string          `json:"requests_remaining,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// ImpliedProbability converts an American moneyline to the break-even win
// probability, rounded to four places. Zero is not a valid line.
func ImpliedProbability(moneyline int) decimal.Decimal {
	if moneyline == 0 {
		return decimal.Zero
	}
	ml := decimal.NewFromInt(int64(moneyline))
	if moneyline < 0 {
		risk := ml.Neg()
		return risk.Div(risk.Add(hundred)).Round(4)
	}
	return hundred.Div(ml.Add(hundred)).Round(4)
}

// Price fills the implied probabilities and bookmaker margin from the
// moneylines already on the snapshot.
func (o *OddsSnapshot) Price() {
	o.HomeImplied = ImpliedProbability(o.HomeML)
	o.AwayImplied = ImpliedProbability(o.AwayML)
	if o.HomeML == 0 || o.AwayML == 0 {
		o.Overround = decimal.Zero
		return
	}
	o.Overround = o.HomeImplied.Add(o.AwayImplied).Sub(one)
}

// FormatMoneyline renders a line with an explicit sign for underdogs.
func FormatMoneyline(ml int) string {
	if ml > 0 {
		return fmt.Sprintf("+%d", ml)
	}
	return fmt.Sprintf("%d", ml)
}

// MoneylineClass buckets a line for display.
func MoneylineClass(ml int) string {
	switch {
	case ml <= -140:
		return "heavy-fav"
	case ml < 0:
		return "favorite"
	case ml <= 120:
		return "slight-dog"
	default:
		return "underdog"
	}
}
