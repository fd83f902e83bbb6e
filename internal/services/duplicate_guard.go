// internal/services/duplicate_guard.go
package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/javajoker/shopify-automation/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// DuplicateGuard decides whether a source listing was already imported.
//
// A listing counts as imported when any stored product's source_url contains
// the identifier as a substring. This matches historical data where URLs vary
// (query strings, locale hosts) but also yields false positives: "55" matches
// ".../item/5512.html". Imported products also record source_product_id for
// exact lookups.
type DuplicateGuard struct {
	db *gorm.DB
}

func NewDuplicateGuard(db *gorm.DB) *DuplicateGuard {
	return &DuplicateGuard{db: db}
}

func (g *DuplicateGuard) Exists(ctx context.Context, sourceID string) (bool, error) {
	if sourceID == "" {
		return false, nil
	}

	var count int64
	err := g.db.WithContext(ctx).Model(&models.Product{}).
		Where(`source_url LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(sourceID)+"%").
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("duplicate check failed: %w", err)
	}
	return count > 0, nil
}

// Partition splits ids into those already imported and those still new,
// keeping the request order and dropping repeats.
func (g *DuplicateGuard) Partition(ctx context.Context, ids []string) (existing, fresh []string, err error) {
	for _, id := range dedupeIDs(ids) {
		found, err := g.Exists(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if found {
			existing = append(existing, id)
		} else {
			fresh = append(fresh, id)
		}
	}
	return existing, fresh, nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
