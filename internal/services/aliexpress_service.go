// internal/services/aliexpress_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/javajoker/shopify-automation/internal/config"
	"github.com/javajoker/shopify-automation/internal/metrics"
)

const (
	defaultCategoryID  = "15"
	defaultSearchLimit = 20
	listingSelector    = "[data-product-id]"
	detailSelector     = ".product-title"
)

var categoryIDs = map[string]string{
	"Home & Garden":          "15",
	"Electronics":            "1",
	"Fashion":                "3",
	"Sports & Entertainment": "18",
	"Automotive":             "26",
	"Beauty & Health":        "66",
	"Toys & Hobbies":         "7",
	"Tools & Hardware":       "13",
}

var usShippingIndicators = []string{
	"free shipping to us",
	"ships to us",
	"us shipping",
	"united states",
	"usa",
}

var (
	numberPattern = regexp.MustCompile(`\d+`)
	ratingPattern = regexp.MustCompile(`\d+\.?\d*`)
)

// ProductAnalytics summarises the popularity signals of one listing.
type ProductAnalytics struct {
	ProductID       string  `json:"product_id"`
	Orders          int     `json:"orders"`
	Rating          float64 `json:"rating"`
	ReviewsCount    int     `json:"reviews_count"`
	PopularityScore float64 `json:"popularity_score"`
	HasUSShipping   bool    `json:"has_us_shipping"`
}

// AliExpressService scrapes AliExpress pages through a shared Chrome
// allocator. Calls are throttled to the configured requests per minute.
type AliExpressService struct {
	cfg         config.ScraperConfig
	baseURL     string
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *logrus.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewAliExpressService(cfg config.ScraperConfig, logger *logrus.Logger) *AliExpressService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	s := &AliExpressService{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		logger:  logger,
	}
	s.initAllocator()
	return s
}

func (s *AliExpressService) initAllocator() {
	if s.cfg.RemoteURL != "" {
		s.allocCtx, s.allocCancel = chromedp.NewRemoteAllocator(context.Background(), s.cfg.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if s.cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if s.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.cfg.UserAgent))
	}

	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Close shuts the browser down.
func (s *AliExpressService) Close() {
	if s.allocCancel != nil {
		s.allocCancel()
	}
}

func (s *AliExpressService) SearchProducts(ctx context.Context, params SearchParams) ([]RawListing, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var listings []RawListing
	err := s.scrape(ctx, "search", BuildSearchURL(s.baseURL, params), listingSelector, listingScript(limit, false), &listings)
	if err != nil {
		s.logger.WithError(err).WithField("keyword", params.Keyword).Error("AliExpress search failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"keyword": params.Keyword, "count": len(listings)}).Info("AliExpress search completed")
	return listings, nil
}

func (s *AliExpressService) GetTrendingProducts(ctx context.Context, category string, limit int) ([]RawListing, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var listings []RawListing
	err := s.scrape(ctx, "trending", BuildTrendingURL(s.baseURL, category), listingSelector, listingScript(limit, true), &listings)
	if err != nil {
		s.logger.WithError(err).WithField("category", category).Error("AliExpress trending lookup failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"category": category, "count": len(listings)}).Info("AliExpress trending lookup completed")
	return listings, nil
}

// GetProductDetail scrapes the item page. A page that renders but yields no
// data returns (nil, nil).
func (s *AliExpressService) GetProductDetail(ctx context.Context, productID string) (*RawDetail, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("product id is required")
	}

	var detail RawDetail
	if err := s.scrape(ctx, "detail", BuildProductURL(s.baseURL, productID), detailSelector, detailScript, &detail); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Error("AliExpress detail lookup failed")
		return nil, err
	}
	if detail.Title == "" && detail.Price == "" && len(detail.Images) == 0 {
		return nil, nil
	}
	if detail.ID == "" {
		detail.ID = productID
	}

	s.logger.WithField("product_id", productID).Info("AliExpress detail lookup completed")
	return &detail, nil
}

// CheckUSShipping reports whether the listing ships to the United States.
func (s *AliExpressService) CheckUSShipping(ctx context.Context, productID string) (bool, error) {
	detail, err := s.GetProductDetail(ctx, productID)
	if err != nil || detail == nil {
		return false, err
	}
	return HasUSShipping(detail.Shipping), nil
}

// GetProductAnalytics returns nil when the listing could not be read.
func (s *AliExpressService) GetProductAnalytics(ctx context.Context, productID string) (*ProductAnalytics, error) {
	detail, err := s.GetProductDetail(ctx, productID)
	if err != nil || detail == nil {
		return nil, err
	}
	return AnalyzeDetail(productID, detail), nil
}

// AnalyzeDetail derives popularity numbers from a scraped page.
func AnalyzeDetail(productID string, detail *RawDetail) *ProductAnalytics {
	orders := ExtractNumber(detail.Orders)
	rating := ExtractRating(detail.Rating)

	a := &ProductAnalytics{
		ProductID:     productID,
		Orders:        orders,
		Rating:        rating,
		ReviewsCount:  ExtractNumber(detail.ReviewsCount),
		HasUSShipping: HasUSShipping(detail.Shipping),
	}
	if rating > 0 {
		a.PopularityScore = float64(orders) * rating
	}
	return a
}

func (s *AliExpressService) scrape(ctx context.Context, operation, pageURL, waitSelector, script string, out interface{}) (err error) {
	done := metrics.TrackExternal("aliexpress", operation)
	defer func() { done(err) }()

	if err = s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	tabCtx, cancelTab := chromedp.NewContext(s.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	headers := network.Headers{"Accept-Language": "en-US,en;q=0.9"}
	if s.cfg.UserAgent != "" {
		headers["User-Agent"] = s.cfg.UserAgent
	}

	err = chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible(waitSelector, chromedp.ByQuery),
		chromedp.Evaluate(script, out),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("scrape %s: %w", pageURL, err)
	}
	return nil
}

// CategoryID maps a category name to the marketplace id, defaulting to
// Home & Garden.
func CategoryID(category string) string {
	if id, ok := categoryIDs[category]; ok {
		return id
	}
	return defaultCategoryID
}

func BuildSearchURL(baseURL string, params SearchParams) string {
	page := params.Page
	if page < 1 {
		page = 1
	}

	q := url.Values{}
	q.Set("SearchText", params.Keyword)
	q.Set("catId", CategoryID(params.Category))
	q.Set("minOrder", strconv.Itoa(params.MinOrders))
	q.Set("page", strconv.Itoa(page))
	if params.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(params.MaxPrice, 'f', -1, 64))
	}
	return baseURL + "/wholesale?" + q.Encode()
}

func BuildTrendingURL(baseURL, category string) string {
	q := url.Values{}
	q.Set("catId", CategoryID(category))
	q.Set("sortType", "total_tranpro_desc")
	q.Set("page", "1")
	return baseURL + "/wholesale?" + q.Encode()
}

func BuildProductURL(baseURL, productID string) string {
	return fmt.Sprintf("%s/item/%s.html", baseURL, url.PathEscape(productID))
}

// ExtractNumber returns the first run of digits in text, or 0.
func ExtractNumber(text string) int {
	m := numberPattern.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// ExtractRating reads the first number in text. Values above 5 are treated
// as a ten point scale.
func ExtractRating(text string) float64 {
	m := ratingPattern.FindString(text)
	if m == "" {
		return 0
	}
	r, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	if r > 5 {
		r = r / 10
	}
	return r
}

func HasUSShipping(shipping string) bool {
	shipping = strings.ToLower(shipping)
	for _, indicator := range usShippingIndicators {
		if strings.Contains(shipping, indicator) {
			return true
		}
	}
	return false
}

func listingScript(limit int, trending bool) string {
	return fmt.Sprintf(`(() => {
	const products = [];
	document.querySelectorAll('[data-product-id]').forEach((el, index) => {
		if (index >= %d) return;
		const id = el.getAttribute('data-product-id');
		const title = el.querySelector('.product-title');
		if (!id || !title) return;
		const price = el.querySelector('.product-price');
		const image = el.querySelector('img');
		const orders = el.querySelector('.product-orders');
		const rating = el.querySelector('.product-rating');
		products.push({
			id: id,
			title: title.textContent.trim(),
			price: price ? price.textContent.trim() : '',
			image_url: image ? image.src : '',
			orders: orders ? orders.textContent.trim() : '',
			rating: rating ? rating.textContent.trim() : '',
			url: el.href || '',
			is_trending: %t
		});
	});
	return products;
})()`, limit, trending)
}

const detailScript = `(() => {
	const text = (sel) => {
		const el = document.querySelector(sel);
		return el ? el.textContent.trim() : '';
	};
	return {
		id: window.location.pathname.split('/').pop().replace('.html', ''),
		title: text('.product-title'),
		price: text('.product-price-current'),
		description: text('.product-description'),
		images: Array.from(document.querySelectorAll('.product-image img')).map(img => img.src),
		variants: Array.from(document.querySelectorAll('.product-variant')).map(v => ({
			name: (v.querySelector('.variant-name') || {textContent: ''}).textContent.trim(),
			price: (v.querySelector('.variant-price') || {textContent: ''}).textContent.trim()
		})),
		shipping: text('.shipping-info'),
		rating: text('.product-rating'),
		reviews_count: text('.product-reviews-count'),
		orders: text('.product-orders'),
		url: window.location.href
	};
})()`
