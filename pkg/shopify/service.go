package shopify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultAPIVersion = "2024-01"
	DefaultTimeout    = 30 * time.Second
	DefaultWorkers    = 4

	accessTokenHeader = "X-Shopify-Access-Token"
)

type Service struct {
	accessToken string
	shop        string
	endpoint    string
	workers     int
	client      *graphql.Client
	logger      *zap.Logger
}

type Config struct {
	// Shop is the store domain, e.g. example.myshopify.com.
	Shop        string
	AccessToken string
	APIVersion  string
	// Endpoint overrides the URL derived from Shop and APIVersion.
	Endpoint string
	Timeout  time.Duration
	// Workers bounds the per-item fan-out of batch operations.
	Workers    int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewService(conf Config) *Service {
	if conf.Shop == "" || conf.AccessToken == "" {
		panic("Shop and AccessToken required")
	}
	if conf.APIVersion == "" {
		conf.APIVersion = DefaultAPIVersion
	}
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultTimeout
	}
	if conf.Workers <= 0 {
		conf.Workers = DefaultWorkers
	}
	if conf.Logger == nil {
		conf.Logger = zap.NewNop()
	}
	endpoint := conf.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", conf.Shop, conf.APIVersion)
	}

	hc := conf.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: conf.Timeout}
	}
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	wrapped := *hc
	wrapped.Transport = statusTransport{next: next}

	logger := conf.Logger.With(zap.String("shop", conf.Shop))
	client := graphql.NewClient(endpoint, graphql.WithHTTPClient(&wrapped))
	client.Log = func(s string) {
		logger.Debug(s)
	}

	return &Service{
		accessToken: conf.AccessToken,
		shop:        conf.Shop,
		endpoint:    endpoint,
		workers:     conf.Workers,
		client:      client,
		logger:      logger,
	}
} // ./NewService

func (s *Service) Endpoint() string {
	return s.endpoint
} // ./Endpoint

// run sends one request and turns any failure into a RemoteCallError.
func (s *Service) run(ctx context.Context, op string, rq *graphql.Request, resp interface{}) error {
	rq.Header.Set(accessTokenHeader, s.accessToken)
	err := s.client.Run(ctx, rq, resp)
	if err != nil {
		s.logger.Debug("shopify request failed", zap.String("op", op), zap.Error(err))
		return &RemoteCallError{Op: op, Err: err}
	}
	return nil
} // ./run

func (s *Service) GetProductByTitle(ctx context.Context, title string) (Product, error) {
	rq := graphql.NewRequest(`
		query productByTitle($query: String!) {
			products(first: 1, query: $query) {
				edges {
					node {
						id
						title
						description
						vendor
						priceRange {
							minVariantPrice {
								amount
								currencyCode
							}
						}
						variants(first: 10) {
							edges {
								node {
									id
									title
									inventoryItem {
										id
									}
								}
							}
						}
						metafields(namespace: "custom", first: 10) {
							edges {
								node {
									id
									namespace
									key
									value
									type
								}
							}
						}
					}
				}
			}
		}
	`)
	rq.Var("query", searchTerm("title", title))

	type response struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	var rs response
	err := s.run(ctx, "productByTitle", rq, &rs)
	if err != nil {
		return Product{}, err
	}
	if len(rs.Products.Edges) == 0 {
		return Product{}, errors.Wrapf(ErrProductNotFound, "title %q", title)
	}
	return rs.Products.Edges[0].Node.product(), nil
} // ./GetProductByTitle

func (s *Service) GetInventoryItemById(ctx context.Context, id string) (InventoryLevel, error) {
	item, err := s.inventoryItem(ctx, id)
	if err != nil {
		return InventoryLevel{}, err
	}
	level, ok := item.firstLevel()
	if !ok {
		return InventoryLevel{}, errors.Wrapf(ErrInventoryLevelNotFound, "inventory item %s", id)
	}
	return level, nil
} // ./GetInventoryItemById

func (s *Service) inventoryItem(ctx context.Context, id string) (*inventoryItemNode, error) {
	rq := graphql.NewRequest(`
		query inventoryItemLevels($id: ID!, $names: [String!]!) {
			inventoryItem(id: $id) {
				id
				inventoryLevels(first: 1) {
					edges {
						node {
							id
							location {
								id
							}
							quantities(names: $names) {
								name
								quantity
							}
						}
					}
				}
			}
		}
	`)
	rq.Var("id", id)
	rq.Var("names", QuantityNames)

	type response struct {
		InventoryItem *inventoryItemNode `json:"inventoryItem"`
	}
	var rs response
	err := s.run(ctx, "inventoryItemLevels", rq, &rs)
	if err != nil {
		return nil, err
	}
	return rs.InventoryItem, nil
} // ./inventoryItem

func (s *Service) GetInventoryItemsByVendor(ctx context.Context, vendor string) ([]VendorProduct, error) {
	rq := graphql.NewRequest(`
		query productsByVendor($query: String!) {
			products(first: 50, query: $query) {
				edges {
					node {
						title
						variants(first: 10) {
							edges {
								node {
									id
									title
									inventoryItem {
										id
									}
								}
							}
						}
					}
				}
			}
		}
	`)
	rq.Var("query", searchTerm("vendor", vendor))

	type response struct {
		Products struct {
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	var rs response
	err := s.run(ctx, "productsByVendor", rq, &rs)
	if err != nil {
		return nil, err
	}
	pp := make([]VendorProduct, 0, len(rs.Products.Edges))
	for _, e := range rs.Products.Edges {
		pp = append(pp, e.Node.vendorProduct())
	}
	return pp, nil
} // ./GetInventoryItemsByVendor

// GetInventoryLevelsByIds reads the first level of every item. Items without
// a level are left out; input order is kept for the rest.
func (s *Service) GetInventoryLevelsByIds(ctx context.Context, items []ItemLocation) ([]InventoryLevel, error) {
	found := make([]*InventoryLevel, len(items))
	err := s.forEach(ctx, len(items), func(ctx context.Context, i int) error {
		item := items[i]
		node, err := s.inventoryItem(ctx, item.ItemID)
		if err != nil {
			return errors.Wrapf(err, "inventory item %s", item.ItemID)
		}
		level, ok := node.firstLevel()
		if !ok {
			s.logger.Debug("no inventory level", zap.String("item_id", item.ItemID))
			return nil
		}
		level.ItemID = item.ItemID
		level.LocationID = item.LocationID
		found[i] = &level
		return nil
	})

	levels := make([]InventoryLevel, 0, len(items))
	for _, l := range found {
		if l != nil {
			levels = append(levels, *l)
		}
	}
	s.logger.Info("fetched inventory levels",
		zap.Int("requested", len(items)),
		zap.Int("found", len(levels)),
		zap.Error(err),
	)
	return levels, err
} // ./GetInventoryLevelsByIds

// UpdateInventoryLevelsByIds adds one unit of "available" stock to every item
// with reason "correction". The returned slice is always empty.
func (s *Service) UpdateInventoryLevelsByIds(ctx context.Context, items []ItemLocation) ([]InventoryLevel, error) {
	levels := []InventoryLevel{}
	err := s.forEach(ctx, len(items), func(ctx context.Context, i int) error {
		return s.adjustQuantity(ctx, items[i], 1)
	})
	s.logger.Info("adjusted inventory quantities",
		zap.Int("items", len(items)),
		zap.Error(err),
	)
	return levels, err
} // ./UpdateInventoryLevelsByIds

func (s *Service) adjustQuantity(ctx context.Context, item ItemLocation, delta int) error {
	rq := graphql.NewRequest(`
		mutation adjustInventoryQuantities($input: InventoryAdjustQuantitiesInput!) {
			inventoryAdjustQuantities(input: $input) {
				userErrors {
					field
					message
				}
			}
		}
	`)
	type change struct {
		Delta           int    `json:"delta"`
		InventoryItemID string `json:"inventoryItemId"`
		LocationID      string `json:"locationId"`
	}
	type input struct {
		Name    string   `json:"name"`
		Reason  string   `json:"reason"`
		Changes []change `json:"changes"`
	}
	rq.Var("input", input{
		Name:   "available",
		Reason: "correction",
		Changes: []change{
			{
				Delta:           delta,
				InventoryItemID: item.ItemID,
				LocationID:      item.LocationID,
			},
		},
	})

	type response struct {
		InventoryAdjustQuantities struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"inventoryAdjustQuantities"`
	}
	var rs response
	err := s.run(ctx, "adjustInventoryQuantities", rq, &rs)
	if err == nil {
		err = userErrors("adjustInventoryQuantities", rs.InventoryAdjustQuantities.UserErrors)
	}
	if err != nil {
		return errors.Wrapf(err, "inventory item %s", item.ItemID)
	}
	s.logger.Debug("adjusted inventory item",
		zap.String("item_id", item.ItemID),
		zap.String("location_id", item.LocationID),
		zap.Int("delta", delta),
	)
	return nil
} // ./adjustQuantity

func (s *Service) GetLocationIds(ctx context.Context) ([]Location, error) {
	rq := graphql.NewRequest(`
		query locations {
			locations(first: 10) {
				edges {
					node {
						id
						name
					}
				}
			}
		}
	`)
	type response struct {
		Locations struct {
			Edges []struct {
				Node Location `json:"node"`
			} `json:"edges"`
		} `json:"locations"`
	}
	var rs response
	err := s.run(ctx, "locations", rq, &rs)
	if err != nil {
		return nil, err
	}
	ll := make([]Location, 0, len(rs.Locations.Edges))
	for _, e := range rs.Locations.Edges {
		ll = append(ll, e.Node)
	}
	return ll, nil
} // ./GetLocationIds

func (s *Service) FirstLocation(ctx context.Context) (Location, error) {
	ll, err := s.GetLocationIds(ctx)
	if err != nil {
		return Location{}, err
	}
	if len(ll) == 0 {
		return Location{}, ErrLocationNotFound
	}
	return ll[0], nil
} // ./FirstLocation

const MetafieldUpdated = "Product metafield updated successfully"

func (s *Service) UpdateProductMetafield(ctx context.Context, productID, metafieldID, key, value string) (string, error) {
	rq := graphql.NewRequest(`
		mutation productMetafieldUpdate($input: ProductInput!, $key: String!) {
			productUpdate(input: $input) {
				product {
					id
					metafield(namespace: "custom", key: $key) {
						namespace
						id
						key
						value
					}
				}
				userErrors {
					field
					message
				}
			}
		}
	`)
	type metafield struct {
		ID  string `json:"id,omitempty"`
		Ns  string `json:"namespace"`
		Key string `json:"key"`
		Val string `json:"value"`
	}
	type input struct {
		ID         string      `json:"id"`
		Metafields []metafield `json:"metafields"`
	}
	rq.Var("input", input{
		ID: productID,
		Metafields: []metafield{
			{
				ID:  metafieldID,
				Ns:  metafieldNamespace,
				Key: key,
				Val: value,
			},
		},
	})
	rq.Var("key", key)

	type response struct {
		ProductUpdate struct {
			Product    GetRaw      `json:"product"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"productUpdate"`
	}
	var rs response
	err := s.run(ctx, "productMetafieldUpdate", rq, &rs)
	if err != nil {
		return "", err
	}
	err = userErrors("productMetafieldUpdate", rs.ProductUpdate.UserErrors)
	if err != nil {
		s.logger.Error("metafield update rejected", zap.String("product_id", productID), zap.Error(err))
		return "", err
	}
	s.logger.Info("metafield updated",
		zap.String("product_id", productID),
		zap.String("key", key),
		zap.Stringer("product", rs.ProductUpdate.Product),
	)
	return MetafieldUpdated, nil
} // ./UpdateProductMetafield

// searchTerm builds an exact-match term for the Admin API search syntax.
func searchTerm(field, value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return fmt.Sprintf(`%s:"%s"`, field, r.Replace(value))
} // ./searchTerm

// statusTransport fails any response outside the 2xx range.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	res, err := t.next.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		res.Body.Close()
		return nil, errors.Errorf("unexpected status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return res, nil
} // ./RoundTrip
