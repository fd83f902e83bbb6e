// internal/services/duplicate_guard_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/shopify-automation/internal/database/dbtest"
	"github.com/javajoker/shopify-automation/internal/models"
)

func TestDuplicateGuardExists(t *testing.T) {
	db := dbtest.New(t)
	guard := NewDuplicateGuard(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Product{Title: "a", SourceURL: "https://www.aliexpress.com/item/1005001.html?lang=ko"}).Error)

	deleted := &models.Product{Title: "b", SourceURL: "https://www.aliexpress.com/item/2002.html"}
	require.NoError(t, db.Create(deleted).Error)
	require.NoError(t, db.Delete(deleted).Error)

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"exact id", "1005001", true},
		{"substring of a longer id", "5001", true},
		{"unknown", "999", false},
		{"soft deleted rows do not count", "2002", false},
		{"empty id", "", false},
		{"like wildcards are literal", "%", false},
		{"underscore is literal", "1005_01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := guard.Exists(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, found)
		})
	}
}

func TestDuplicateGuardPartition(t *testing.T) {
	db := dbtest.New(t)
	guard := NewDuplicateGuard(db)
	require.NoError(t, db.Create(&models.Product{Title: "a", SourceURL: "https://www.aliexpress.com/item/2.html"}).Error)

	existing, fresh, err := guard.Partition(context.Background(), []string{"3", " 2 ", "1", "3", "", "2"})

	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, existing)
	assert.Equal(t, []string{"3", "1"}, fresh)
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupeIDs([]string{"a", " a", "", "b", "a "}))
	assert.Empty(t, dedupeIDs(nil))
}
