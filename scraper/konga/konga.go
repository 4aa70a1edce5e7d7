package konga

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"ngcommerce-analytics/config"
	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

const (
	baseURL    = "https://www.konga.com"
	sourceName = "Konga"
)

// Konga renders its category listings client-side, so this scraper drives
// a headless browser instead of fetching static HTML.
var categories = []struct {
	name string
	path string
}{
	{"beverages", "/category/beverages-1610"},
	{"soft-drinks", "/category/drinks-5282"},
	{"detergents", "/category/laundry-cleaning-2351"},
	{"snacks", "/category/biscuits-snacks-1613"},
	{"personal-care", "/category/bath-body-1329"},
	{"food", "/category/food-cupboard-1608"},
}

// Scraper collects product listings from Konga's JS-rendered category pages.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	retry   *utils.RetryConfig
	visited *utils.URLSet
}

// New creates a ready-to-use Konga Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		visited: utils.NewURLSet(),
	}
}

// Name implements scraper.Collector.
func (s *Scraper) Name() string { return sourceName }

// Collect drives a shared headless-browser allocator across every
// configured category page.
func (s *Scraper) Collect() ([]*models.RawProduct, error) {
	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[konga] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()
	allocCtx = silentCtx

	var products []*models.RawProduct
	for _, cat := range categories {
		catProducts, err := s.scrapeCategory(allocCtx, cat.name, baseURL+cat.path)
		if err != nil {
			s.logger.Warn("[konga] Category %s failed: %v", cat.name, err)
			continue
		}
		products = append(products, catProducts...)
		time.Sleep(time.Duration(s.cfg.RateLimitMs) * time.Millisecond)
	}

	s.logger.Info("[konga] Scrape complete — %d raw products", len(products))
	return products, nil
}

func (s *Scraper) scrapeCategory(allocCtx context.Context, category, pageURL string) ([]*models.RawProduct, error) {
	var products []*models.RawProduct

	err := s.retry.Do(fmt.Sprintf("konga-%s", category), func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 90*time.Second)
		defer cancelTimeout()

		type cardData struct {
			Name         string `json:"name"`
			Price        string `json:"price"`
			OldPrice     string `json:"oldPrice"`
			Rating       string `json:"rating"`
			Availability string `json:"availability"`
			URL          string `json:"url"`
		}

		var cards []cardData

		err := chromedp.Run(ctx,
			chromedp.Navigate(pageURL),
			chromedp.Sleep(5*time.Second),

			// Scroll to trigger lazy-loaded cards
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight / 2)`, nil),
			chromedp.Sleep(2*time.Second),
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var cards = document.querySelectorAll('section ul li article');
					if (cards.length === 0) {
						cards = document.querySelectorAll('div[class*="product-block"], li[class*="product-item"]');
					}

					var seen = {};
					for (var i = 0; i < cards.length; i++) {
						var card = cards[i];

						var linkEl = card.querySelector('a[href*="/product/"]') || card.querySelector('a');
						var url = linkEl ? linkEl.href : '';
						if (!url || seen[url]) continue;
						seen[url] = true;

						var nameEl = card.querySelector('h3') ||
						             card.querySelector('[class*="name"]') ||
						             card.querySelector('[class*="title"]');
						var name = nameEl ? nameEl.innerText.trim() : '';

						var priceEl = card.querySelector('[class*="price"] span') ||
						              card.querySelector('[class*="price"]');
						var price = '';
						if (priceEl) {
							var match = priceEl.innerText.match(/₦?\s*[\d,]+(?:\.\d+)?/);
							price = match ? match[0] : priceEl.innerText.split('\n')[0];
						}

						var oldEl = card.querySelector('del, s, [class*="old-price"]');
						var oldPrice = oldEl ? oldEl.innerText.trim() : '';

						var ratingEl = card.querySelector('[class*="rating"]') ||
						               card.querySelector('[aria-label*="rating"]');
						var rating = '';
						if (ratingEl) {
							var rMatch = (ratingEl.innerText || ratingEl.getAttribute('aria-label') || '').match(/(\d(?:\.\d+)?)/);
							rating = rMatch ? rMatch[1] : '';
						}

						var stockEl = card.querySelector('[class*="stock"], [class*="availability"]');
						var availability = stockEl ? stockEl.innerText.trim() : '';

						results.push({
							name: name,
							price: price,
							oldPrice: oldPrice,
							rating: rating,
							availability: availability,
							url: url
						});
					}

					return results;
				})()
			`, &cards),
		)
		if err != nil {
			return fmt.Errorf("chromedp category scrape: %w", err)
		}

		s.logger.Debug("[konga] Category %s — found %d cards", category, len(cards))

		now := time.Now()
		for _, c := range cards {
			if c.Name == "" || c.URL == "" {
				continue
			}
			if !s.visited.Add(c.URL) {
				continue
			}

			products = append(products, &models.RawProduct{
				ProductName:     c.Name,
				Price:           c.Price,
				Category:        category,
				Source:          sourceName,
				Timestamp:       now,
				Rating:          parseRating(c.Rating),
				DiscountPercent: discountFrom(c.Price, c.OldPrice),
				Availability:    c.Availability,
				URL:             c.URL,
			})
		}

		return nil
	})

	return products, err
}

// parseRating converts a "4.5" style fragment to a bounded rating.
func parseRating(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	var rating float64
	if _, err := fmt.Sscanf(text, "%f", &rating); err != nil {
		return 0
	}
	if rating < 0 || rating > 5 {
		return 0
	}
	return rating
}

// discountFrom derives a percentage from the current and struck-through
// prices when the site shows no explicit badge.
func discountFrom(current, old string) float64 {
	curVal := priceDigits(current)
	oldVal := priceDigits(old)
	if curVal <= 0 || oldVal <= curVal {
		return 0
	}
	return (oldVal - curVal) / oldVal * 100
}

func priceDigits(text string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, strings.ReplaceAll(text, ",", ""))
	if cleaned == "" {
		return 0
	}
	var v float64
	if _, err := fmt.Sscanf(cleaned, "%f", &v); err != nil {
		return 0
	}
	return v
}

// findChromeBinary locates a usable browser binary, preferring the
// configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}
	candidates := []string{
		"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome",
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
