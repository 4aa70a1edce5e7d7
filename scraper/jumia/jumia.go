package jumia

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ngcommerce-analytics/config"
	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

const (
	baseURL    = "https://www.jumia.com.ng"
	sourceName = "Jumia"
	userAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// category paths scraped per run, in a fixed order.
var categories = []struct {
	name string
	path string
}{
	{"beverages", "/groceries/beverages/"},
	{"soft-drinks", "/groceries/soft-drinks/"},
	{"detergents", "/home-office/laundry-cleaning/"},
	{"snacks", "/groceries/snacks/"},
	{"personal-care", "/health-beauty/bath-body/"},
	{"food", "/groceries/food-cupboard/"},
}

// Scraper collects product listings from Jumia Nigeria's static category
// pages.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	client  *http.Client
	retry   *utils.RetryConfig
	visited *utils.URLSet
}

// New creates a ready-to-use Jumia Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
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

// Collect walks every configured category, page by page, until the page
// limit is reached or a page comes back empty.
func (s *Scraper) Collect() ([]*models.RawProduct, error) {
	var products []*models.RawProduct

	for _, cat := range categories {
		for page := 1; page <= s.cfg.PagesPerCategory; page++ {
			url := fmt.Sprintf("%s%s?page=%d", baseURL, cat.path, page)

			pageProducts, err := s.scrapePage(url, cat.name)
			if err != nil {
				s.logger.Warn("[jumia] Page %d of %s failed: %v", page, cat.name, err)
				continue
			}
			if len(pageProducts) == 0 {
				s.logger.Debug("[jumia] No products on page %d of %s — moving on", page, cat.name)
				break
			}

			products = append(products, pageProducts...)
			time.Sleep(time.Duration(s.cfg.RateLimitMs) * time.Millisecond)
		}
	}

	s.logger.Info("[jumia] Scrape complete — %d raw products", len(products))
	return products, nil
}

func (s *Scraper) scrapePage(url, category string) ([]*models.RawProduct, error) {
	var doc *goquery.Document

	err := s.retry.Do("jumia-page", func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", "en-NG,en;q=0.9")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("parse %s: %w", url, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var products []*models.RawProduct

	doc.Find("article.prd").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("h3.name").Text())
		if name == "" {
			return
		}

		href, _ := card.Find("a.core").Attr("href")
		productURL := ""
		if href != "" {
			productURL = baseURL + href
			if !s.visited.Add(productURL) {
				return
			}
		}

		products = append(products, &models.RawProduct{
			ProductName:     name,
			Price:           strings.TrimSpace(card.Find(".prc").Text()),
			Category:        category,
			Source:          sourceName,
			Timestamp:       now,
			Rating:          parseStars(card.Find(".stars._s").Text()),
			DiscountPercent: parseDiscount(card.Find(".bdg._dsct").Text()),
			IsBestseller:    card.Find(".bdg._mall").Length() > 0,
			Availability:    strings.TrimSpace(card.Find(".stk").Text()),
			URL:             productURL,
		})
	})

	return products, nil
}

// parseStars extracts a 0–5 rating from text like "4.2 out of 5".
func parseStars(text string) float64 {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return 0
	}
	rating, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || rating < 0 || rating > 5 {
		return 0
	}
	return rating
}

// parseDiscount extracts the percentage from badges like "-25%".
func parseDiscount(text string) float64 {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "-")
	text = strings.TrimSuffix(text, "%")
	if text == "" {
		return 0
	}
	discount, err := strconv.ParseFloat(text, 64)
	if err != nil || discount < 0 {
		return 0
	}
	return discount
}
