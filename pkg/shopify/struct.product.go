package shopify

import "github.com/shopspring/decimal"

const metafieldNamespace = "custom"

type Product struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Vendor      string               `json:"vendor"`
	PriceRange  PriceRange           `json:"priceRange"`
	Variants    []Variant            `json:"variants"`
	Metafields  map[string]Metafield `json:"metafields"`
}

type PriceRange struct {
	MinVariantPrice Money `json:"minVariantPrice"`
}

type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

type Variant struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	InventoryItemID string `json:"inventoryItemId"`
}

type Metafield struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

// VendorProduct is the slice of a product needed to locate its inventory.
type VendorProduct struct {
	Title    string    `json:"title"`
	Variants []Variant `json:"variants"`
}

// FirstVariant reports the product's first variant, if it has one.
func (p Product) FirstVariant() (Variant, bool) {
	if len(p.Variants) == 0 {
		return Variant{}, false
	}
	return p.Variants[0], true
} // ./FirstVariant

func (p Product) Metafield(key string) (Metafield, bool) {
	m, ok := p.Metafields[key]
	return m, ok
} // ./Metafield

func (p VendorProduct) FirstVariant() (Variant, bool) {
	if len(p.Variants) == 0 {
		return Variant{}, false
	}
	return p.Variants[0], true
} // ./FirstVariant

// productNode mirrors the connection shape returned by the Admin API.
type productNode struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Vendor      string     `json:"vendor"`
	PriceRange  PriceRange `json:"priceRange"`
	Variants    struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Metafields struct {
		Edges []struct {
			Node Metafield `json:"node"`
		} `json:"edges"`
	} `json:"metafields"`
}

type variantNode struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	InventoryItem struct {
		ID string `json:"id"`
	} `json:"inventoryItem"`
}

func (v variantNode) variant() Variant {
	return Variant{
		ID:              v.ID,
		Title:           v.Title,
		InventoryItemID: v.InventoryItem.ID,
	}
} // ./variant

func (n productNode) product() Product {
	p := Product{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Vendor:      n.Vendor,
		PriceRange:  n.PriceRange,
		Variants:    make([]Variant, 0, len(n.Variants.Edges)),
		Metafields:  make(map[string]Metafield, len(n.Metafields.Edges)),
	}
	for _, e := range n.Variants.Edges {
		p.Variants = append(p.Variants, e.Node.variant())
	}
	for _, e := range n.Metafields.Edges {
		m := e.Node
		if m.Namespace == "" {
			m.Namespace = metafieldNamespace
		}
		p.Metafields[m.Key] = m
	}
	return p
} // ./product

func (n productNode) vendorProduct() VendorProduct {
	p := VendorProduct{
		Title:    n.Title,
		Variants: make([]Variant, 0, len(n.Variants.Edges)),
	}
	for _, e := range n.Variants.Edges {
		p.Variants = append(p.Variants, e.Node.variant())
	}
	return p
} // ./vendorProduct
