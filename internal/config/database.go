// internal/config/database.go
package config

import (
	"fmt"
	"strings"
)

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// ShopBaseURL returns the admin REST root for the configured shop, e.g.
// https://example.myshopify.com/admin/api/2024-01
func (s *ShopifyConfig) ShopBaseURL() string {
	shop := strings.TrimSuffix(s.ShopURL, "/")
	if !strings.HasPrefix(shop, "http://") && !strings.HasPrefix(shop, "https://") {
		shop = "https://" + shop
	}
	return fmt.Sprintf("%s/admin/api/%s", shop, s.APIVersion)
}
