package storage

import "ngcommerce-analytics/models"

// ProductWriter is the interface any processed-product sink must satisfy.
type ProductWriter interface {
	Write(products []*models.Product) error
	Close() error
}
