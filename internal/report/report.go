// Package report aggregates sales and inventory for the reports screen and
// the spreadsheet export. Every function here is pure: the same input always
// yields the same output.
package report

import (
	"sort"
	"time"

	"deposito-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DayLayout is the pt-BR calendar day format used as the daily group key.
const DayLayout = "02/01/2006"

// Range is an inclusive sale time window.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewRange widens start to the beginning of its day and end to 23:59:59.999
// of its day, both in loc.
func NewRange(start, end time.Time, loc *time.Location) Range {
	s := start.In(loc)
	e := end.In(loc)
	return Range{
		Start: time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc),
		End:   time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, int(999*time.Millisecond), loc),
	}
}

// Contains reports whether t falls inside the window. An inverted range
// contains nothing.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Filter keeps the sales whose sale time is inside r, in input order.
func Filter(sales []model.Sale, r Range) []model.Sale {
	out := make([]model.Sale, 0, len(sales))
	for _, s := range sales {
		if r.Contains(s.SoldAt) {
			out = append(out, s)
		}
	}
	return out
}

// Group is one row of a grouping: a key with its count and summed total.
type Group struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// ProductRank is one row of the best sellers ranking.
type ProductRank struct {
	Rank      int             `json:"rank"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SalesSummary is the aggregated view of the sales inside a range.
type SalesSummary struct {
	Range         Range           `json:"range"`
	Sales         []model.Sale    `json:"sales"`
	Count         int             `json:"count"`
	Revenue       decimal.Decimal `json:"revenue"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	ByPayment     []Group         `json:"by_payment"`
	BySeller      []Group         `json:"by_seller"`
	ByDay         []Group         `json:"by_day"`
	TopProducts   []ProductRank   `json:"top_products"`
}

// Aggregate filters sales to r and computes every grouping. Day keys are
// computed in loc.
func Aggregate(sales []model.Sale, r Range, loc *time.Location) SalesSummary {
	filtered := Filter(sales, r)

	revenue := decimal.Zero
	for _, s := range filtered {
		revenue = revenue.Add(s.Total)
	}

	return SalesSummary{
		Range:         r,
		Sales:         filtered,
		Count:         len(filtered),
		Revenue:       revenue,
		AverageTicket: AverageTicket(revenue, len(filtered)),
		ByPayment:     ByPayment(filtered),
		BySeller:      BySeller(filtered),
		ByDay:         ByDay(filtered, loc),
		TopProducts:   TopProducts(filtered),
	}
}

// AverageTicket is revenue / count rounded to cents, or zero with no sales.
func AverageTicket(revenue decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return revenue.DivRound(decimal.NewFromInt(int64(count)), 2)
}

// groupBy accumulates totals per key keeping first-seen order.
func groupBy(sales []model.Sale, key func(model.Sale) (string, string)) []Group {
	idx := make(map[string]int)
	var groups []Group
	for _, s := range sales {
		k, label := key(s)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{Key: k, Label: label, Total: decimal.Zero})
		}
		groups[i].Count++
		groups[i].Total = groups[i].Total.Add(s.Total)
	}
	return groups
}

func sortByTotalDesc(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.GreaterThan(groups[j].Total)
	})
}

// ByPayment groups by payment method, largest total first.
func ByPayment(sales []model.Sale) []Group {
	groups := groupBy(sales, func(s model.Sale) (string, string) {
		return string(s.PaymentMethod), s.PaymentMethod.Label()
	})
	sortByTotalDesc(groups)
	return groups
}

// BySeller groups by seller name, largest total first.
func BySeller(sales []model.Sale) []Group {
	groups := groupBy(sales, func(s model.Sale) (string, string) {
		return s.SellerName, s.SellerName
	})
	sortByTotalDesc(groups)
	return groups
}

// ByDay groups by calendar day in loc, newest day first.
func ByDay(sales []model.Sale, loc *time.Location) []Group {
	groups := groupBy(sales, func(s model.Sale) (string, string) {
		d := s.SoldAt.In(loc).Format(DayLayout)
		return d, d
	})
	sort.SliceStable(groups, func(i, j int) bool {
		a, _ := time.Parse(DayLayout, groups[i].Key)
		b, _ := time.Parse(DayLayout, groups[j].Key)
		return a.After(b)
	})
	return groups
}

// TopProducts ranks products by units sold across sales. Items are grouped by
// product name; ties keep first-seen order.
func TopProducts(sales []model.Sale) []ProductRank {
	idx := make(map[string]int)
	var ranks []ProductRank
	for _, s := range sales {
		for _, it := range s.Items {
			i, ok := idx[it.ProductName]
			if !ok {
				i = len(ranks)
				idx[it.ProductName] = i
				ranks = append(ranks, ProductRank{ProductID: it.ProductID, Name: it.ProductName, Revenue: decimal.Zero})
			}
			ranks[i].Quantity += it.Quantity
			ranks[i].Revenue = ranks[i].Revenue.Add(it.Subtotal)
		}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Quantity > ranks[j].Quantity
	})
	for i := range ranks {
		ranks[i].Rank = i + 1
	}
	return ranks
}
