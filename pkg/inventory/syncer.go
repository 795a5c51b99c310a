// Package inventory composes Admin API operations into the workflows served
// over HTTP and run on a schedule.
package inventory

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"inventorysync.com/pkg/shopify"
)

var ErrMetafieldNotFound = errors.New("metafield not found")

// Store is the slice of the Admin API the workflows need. *shopify.Service
// satisfies it.
type Store interface {
	GetProductByTitle(ctx context.Context, title string) (shopify.Product, error)
	GetInventoryItemById(ctx context.Context, id string) (shopify.InventoryLevel, error)
	GetInventoryItemsByVendor(ctx context.Context, vendor string) ([]shopify.VendorProduct, error)
	GetInventoryLevelsByIds(ctx context.Context, items []shopify.ItemLocation) ([]shopify.InventoryLevel, error)
	UpdateInventoryLevelsByIds(ctx context.Context, items []shopify.ItemLocation) ([]shopify.InventoryLevel, error)
	FirstLocation(ctx context.Context) (shopify.Location, error)
	UpdateProductMetafield(ctx context.Context, productID, metafieldID, key, value string) (string, error)
}

var _ Store = (*shopify.Service)(nil)

type Syncer struct {
	store  Store
	logger *zap.Logger
}

func NewSyncer(store Store, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{store: store, logger: logger}
} // ./NewSyncer

// Result is the outcome of a vendor adjustment. Err is set instead of being
// returned so both triggers handle it the same way.
type Result struct {
	Vendor string                   `json:"vendor"`
	Items  []shopify.ItemLocation   `json:"items"`
	Levels []shopify.InventoryLevel `json:"levels"`
	Err    error                    `json:"-"`
	// Failures holds the per-item errors behind Err, in item order.
	Failures []error `json:"-"`
}

// Summary is a short description of Err that stays bounded no matter how
// many items failed.
func (r Result) Summary() string {
	if r.Err == nil {
		return ""
	}
	if len(r.Failures) <= 1 {
		return r.Err.Error()
	}
	return fmt.Sprintf("adjust inventory: %d of %d items failed, first: %v",
		len(r.Failures), len(r.Items), r.Failures[0])
} // ./Summary

// ResolveItems pairs the first variant's inventory item of every vendor
// product with the store's first location.
func (s *Syncer) ResolveItems(ctx context.Context, vendor string) ([]shopify.ItemLocation, error) {
	products, err := s.store.GetInventoryItemsByVendor(ctx, vendor)
	if err != nil {
		return nil, errors.Wrapf(err, "list products for vendor %q", vendor)
	}
	location, err := s.store.FirstLocation(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "resolve location")
	}

	items := make([]shopify.ItemLocation, 0, len(products))
	for _, p := range products {
		v, ok := p.FirstVariant()
		if !ok || v.InventoryItemID == "" {
			s.logger.Warn("product has no inventory item",
				zap.String("vendor", vendor),
				zap.String("title", p.Title),
			)
			continue
		}
		items = append(items, shopify.ItemLocation{
			ItemID:     v.InventoryItemID,
			LocationID: location.ID,
		})
	}
	s.logger.Debug("resolved vendor items",
		zap.String("vendor", vendor),
		zap.String("location_id", location.ID),
		zap.Int("products", len(products)),
		zap.Int("items", len(items)),
	)
	return items, nil
} // ./ResolveItems

// VendorLevels reads the inventory level of every resolved vendor item.
func (s *Syncer) VendorLevels(ctx context.Context, vendor string) ([]shopify.InventoryLevel, error) {
	items, err := s.ResolveItems(ctx, vendor)
	if err != nil {
		return nil, err
	}
	levels, err := s.store.GetInventoryLevelsByIds(ctx, items)
	if err != nil {
		return nil, errors.Wrap(err, "fetch inventory levels")
	}
	return levels, nil
} // ./VendorLevels

// AdjustVendor adds one unit to every resolved vendor item.
func (s *Syncer) AdjustVendor(ctx context.Context, vendor string) Result {
	res := Result{Vendor: vendor, Levels: []shopify.InventoryLevel{}}
	items, err := s.ResolveItems(ctx, vendor)
	if err != nil {
		res.Err = err
		return res
	}
	res.Items = items

	levels, err := s.store.UpdateInventoryLevelsByIds(ctx, items)
	if levels != nil {
		res.Levels = levels
	}
	if err != nil {
		res.Failures = multierr.Errors(err)
		res.Err = errors.Wrap(err, "adjust inventory")
	}
	return res
} // ./AdjustVendor

// Product looks a product up by title and reads the inventory level of its
// first variant. The level is logged, not returned.
func (s *Syncer) Product(ctx context.Context, title string) (shopify.Product, error) {
	p, err := s.store.GetProductByTitle(ctx, title)
	if err != nil {
		return shopify.Product{}, err
	}
	v, ok := p.FirstVariant()
	if !ok {
		s.logger.Warn("product has no variants", zap.String("product_id", p.ID))
		return p, nil
	}
	level, err := s.store.GetInventoryItemById(ctx, v.InventoryItemID)
	if err != nil {
		return shopify.Product{}, errors.Wrapf(err, "inventory for product %s", p.ID)
	}
	available, _ := level.Quantity("available")
	s.logger.Info("product inventory",
		zap.String("product_id", p.ID),
		zap.String("inventory_item_id", v.InventoryItemID),
		zap.String("inventory_level_id", level.ID),
		zap.Int("available", available),
	)
	return p, nil
} // ./Product

// UpdateMetafield sets the value of an existing custom metafield on the
// product with the given title.
func (s *Syncer) UpdateMetafield(ctx context.Context, title, key, value string) (string, error) {
	p, err := s.store.GetProductByTitle(ctx, title)
	if err != nil {
		return "", err
	}
	m, ok := p.Metafield(key)
	if !ok {
		return "", errors.Wrapf(ErrMetafieldNotFound, "product %s key %q", p.ID, key)
	}
	return s.store.UpdateProductMetafield(ctx, p.ID, m.ID, m.Key, value)
} // ./UpdateMetafield
