package scraper

import (
	"sync"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

// Collector scrapes raw product records from one e-commerce site.
type Collector interface {
	Name() string
	Collect() ([]*models.RawProduct, error)
}

// CollectAll fans collectors out over the worker pool and waits for every
// one to finish before returning — the processing phase always sees a
// completed batch. A failed collector is logged and skipped; the batch
// continues with whatever the other sites produced.
func CollectAll(collectors []Collector, pool *utils.WorkerPool, logger *utils.Logger) []*models.RawProduct {
	var mu sync.Mutex
	var all []*models.RawProduct

	for _, c := range collectors {
		c := c
		pool.Submit(func() {
			products, err := c.Collect()
			if err != nil {
				logger.Error("[collect] %s failed: %v", c.Name(), err)
				return
			}

			mu.Lock()
			all = append(all, products...)
			mu.Unlock()

			logger.Info("[collect] %s contributed %d raw records", c.Name(), len(products))
		})
	}

	pool.Wait()
	logger.Info("[collect] Collection phase complete — %d raw records from %d sites",
		len(all), len(collectors))
	return all
}
