// internal/services/fakes_test.go
package services

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/javajoker/shopify-automation/internal/models"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) SearchProducts(ctx context.Context, params SearchParams) ([]RawListing, error) {
	args := m.Called(ctx, params)
	listings, _ := args.Get(0).([]RawListing)
	return listings, args.Error(1)
}

func (m *mockSource) GetTrendingProducts(ctx context.Context, category string, limit int) ([]RawListing, error) {
	args := m.Called(ctx, category, limit)
	listings, _ := args.Get(0).([]RawListing)
	return listings, args.Error(1)
}

func (m *mockSource) GetProductDetail(ctx context.Context, productID string) (*RawDetail, error) {
	args := m.Called(ctx, productID)
	detail, _ := args.Get(0).(*RawDetail)
	return detail, args.Error(1)
}

type mockDestination struct {
	mock.Mock
}

func (m *mockDestination) ListProducts(ctx context.Context, cursor string, limit int) (*ProductPage, error) {
	args := m.Called(ctx, cursor, limit)
	page, _ := args.Get(0).(*ProductPage)
	return page, args.Error(1)
}

func (m *mockDestination) GetProduct(ctx context.Context, id string) (*ShopifyProduct, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*ShopifyProduct)
	return product, args.Error(1)
}

func (m *mockDestination) CreateProduct(ctx context.Context, draft *ProductDraft) (*ShopifyProduct, error) {
	args := m.Called(ctx, draft)
	product, _ := args.Get(0).(*ShopifyProduct)
	return product, args.Error(1)
}

func (m *mockDestination) UpdateProduct(ctx context.Context, id string, update *ShopifyProductUpdate) (*ShopifyProduct, error) {
	args := m.Called(ctx, id, update)
	product, _ := args.Get(0).(*ShopifyProduct)
	return product, args.Error(1)
}

func (m *mockDestination) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDestination) TestConnection(ctx context.Context) (*ShopInfo, error) {
	args := m.Called(ctx)
	shop, _ := args.Get(0).(*ShopInfo)
	return shop, args.Error(1)
}

// stubGenerator replies with a fixed text and remembers the prompts it saw.
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	prompts []string
}

func (g *stubGenerator) GenerateContent(_ context.Context, prompt string, _ int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply
}

type recordedEvent struct {
	Level models.LogLevel
	Entry LogEntry
}

type recordingDiag struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (d *recordingDiag) Record(_ context.Context, level models.LogLevel, entry LogEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, recordedEvent{Level: level, Entry: entry})
}

func (d *recordingDiag) messages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Entry.Message)
	}
	return out
}

type fakeArchiver struct {
	key string
	err error
}

func (a *fakeArchiver) ArchiveSourcePayload(_ context.Context, sourceID string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.key + sourceID + ".json", nil
}

func sampleDetail(id string) *RawDetail {
	return &RawDetail{
		ID:          id,
		Title:       "Wireless Mouse",
		Price:       "US $19.99",
		Description: "Ergonomic wireless mouse",
		Images:      []string{"https://img.example.com/1.jpg", " ", "https://img.example.com/2.jpg"},
		Variants: []RawVariant{
			{Name: "Black", Price: "$10.00"},
			{Name: "", Price: "n/a"},
		},
		URL: "https://www.aliexpress.com/item/" + id + ".html",
	}
}
