// Package warmstart produces a weekly-campaign hint for which SKU is
// produced on which day, applied ahead of the solver as a heuristic
// starting point rather than a hard constraint.
package warmstart

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/planengine/planengine/internal/domain"
)

// Hints maps a product_produced variable name (as model/builder.go names
// it: "product_produced[productID,date]") to its hinted 0/1 value.
type Hints map[string]float64

// Generate cycles the product set across weekdays so each product is
// assigned a fixed subset of weekdays over the horizon — a campaign
// schedule rather than daily changeover. Each product's weekday bucket is
// derived from a hash of its ID, so repeated calls over the same instance
// produce identical hints (round-trip stability, same property the cohort
// arena handles rely on).
func Generate(inst domain.Instance) Hints {
	products := append([]domain.Product(nil), inst.Products...)
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	bucketOf := make(map[string]int, len(products))
	for _, p := range products {
		bucketOf[p.ID] = weekdayBucket(p.ID, len(products))
	}

	hints := make(Hints, len(products)*len(inst.Window.Days()))
	for _, day := range inst.Window.Days() {
		weekday := int(day.Weekday())
		for _, p := range products {
			value := 0.0
			if bucketOf[p.ID] == weekday%7 {
				value = 1
			}
			name := fmt.Sprintf("product_produced[%s,%s]", p.ID, day.Format("2006-01-02"))
			hints[name] = value
		}
	}
	return hints
}

// weekdayBucket deterministically assigns a product to one of up to 7
// weekday buckets (or fewer, when there are fewer products than weekdays,
// so every product still gets at least one production day per week).
func weekdayBucket(productID string, numProducts int) int {
	buckets := numProducts
	if buckets <= 0 {
		buckets = 1
	}
	if buckets > 7 {
		buckets = 7
	}
	sum := sha256.Sum256([]byte(productID))
	h := binary.BigEndian.Uint32(sum[:4])
	return int(h % uint32(buckets))
}
