package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"inventorysync.com/pkg/api"
	"inventorysync.com/pkg/inventory"
	"inventorysync.com/pkg/shopify"
	"inventorysync.com/pkg/shopify/shopifytest"
)

type M = shopifytest.M

// Mock Service
type mockService struct {
	levels    []shopify.InventoryLevel
	levelsErr error
	product   shopify.Product
	prodErr   error
	msg       string
	mfErr     error
	result    inventory.Result

	vendors []string
	titles  []string
}

func (m *mockService) VendorLevels(ctx context.Context, vendor string) ([]shopify.InventoryLevel, error) {
	m.vendors = append(m.vendors, vendor)
	return m.levels, m.levelsErr
}

func (m *mockService) Product(ctx context.Context, title string) (shopify.Product, error) {
	m.titles = append(m.titles, title)
	return m.product, m.prodErr
}

func (m *mockService) UpdateMetafield(ctx context.Context, title, key, value string) (string, error) {
	m.titles = append(m.titles, title)
	return m.msg, m.mfErr
}

func (m *mockService) AdjustVendor(ctx context.Context, vendor string) inventory.Result {
	m.vendors = append(m.vendors, vendor)
	res := m.result
	res.Vendor = vendor
	if res.Levels == nil {
		res.Levels = []shopify.InventoryLevel{}
	}
	return res
}

func newHandler(svc api.Service) http.Handler {
	srv := api.NewServer(api.ServerOptions{Port: 0, ReadHeaderTimeout: time.Second}, zap.NewNop())
	api.Register(srv.Mux(), zap.NewNop(), svc)
	return srv.Handler()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	rr := do(newHandler(&mockService{}), http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestInventoryItems(t *testing.T) {
	svc := &mockService{levels: []shopify.InventoryLevel{{
		ID:         "gid://shopify/InventoryLevel/1",
		Quantities: []shopify.Quantity{{Name: "available", Quantity: 4}},
	}}}
	rr := do(newHandler(svc), http.MethodGet, "/inventory-items/Nectar", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var got []shopify.InventoryLevel
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "gid://shopify/InventoryLevel/1" {
		t.Fatalf("unexpected levels: %+v", got)
	}
	if len(svc.vendors) != 1 || svc.vendors[0] != "Nectar" {
		t.Fatalf("unexpected vendors: %v", svc.vendors)
	}
}

func TestInventoryItemsError(t *testing.T) {
	svc := &mockService{levelsErr: errors.New("boom")}
	rr := do(newHandler(svc), http.MethodGet, "/inventory-items/Nectar", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if rr.Body.String() != "Error fetching inventory items" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestProductTitleIsDecoded(t *testing.T) {
	svc := &mockService{product: shopify.Product{ID: shopifytest.ProductID(1), Title: "Café & Co"}}
	rr := do(newHandler(svc), http.MethodGet, "/product/Caf%C3%A9%20%26%20Co", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(svc.titles) != 1 || svc.titles[0] != "Café & Co" {
		t.Fatalf("unexpected titles: %v", svc.titles)
	}
}

func TestProductError(t *testing.T) {
	svc := &mockService{prodErr: shopify.ErrProductNotFound}
	rr := do(newHandler(svc), http.MethodGet, "/product/missing", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if rr.Body.String() != "Error fetching product" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestUpdateMetafield(t *testing.T) {
	svc := &mockService{msg: shopify.MetafieldUpdated}
	rr := do(newHandler(svc), http.MethodPost, "/update-metafield",
		`{"title":"Blend","metafieldKey":"color","newValue":"blue"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var msg string
	if err := json.Unmarshal(rr.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg != shopify.MetafieldUpdated {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestUpdateMetafieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   string
		status int
		want   string
	}{
		{
			name:   "missing metafield",
			err:    errors.Wrap(inventory.ErrMetafieldNotFound, "product 1"),
			body:   `{"title":"Blend","metafieldKey":"nope","newValue":"x"}`,
			status: http.StatusNotFound,
			want:   "Metafield not found",
		},
		{
			name:   "remote failure",
			err:    errors.New("boom"),
			body:   `{"title":"Blend","metafieldKey":"color","newValue":"x"}`,
			status: http.StatusInternalServerError,
			want:   "Error updating metafield",
		},
		{
			name:   "bad json",
			body:   `{`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing key",
			body:   `{"title":"Blend"}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(newHandler(&mockService{mfErr: tt.err}), http.MethodPost, "/update-metafield", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
			if tt.want != "" && rr.Body.String() != tt.want {
				t.Fatalf("unexpected body %q", rr.Body.String())
			}
		})
	}
}

func TestUpdateInventoryValidation(t *testing.T) {
	h := newHandler(&mockService{})
	for _, body := range []string{`{`, `{}`, `{"vendor":"  "}`} {
		rr := do(h, http.MethodPost, "/update-inventory", body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestUpdateInventoryError(t *testing.T) {
	svc := &mockService{result: inventory.Result{Err: errors.New("adjust inventory: boom")}}
	rr := do(newHandler(svc), http.MethodPost, "/update-inventory", `{"vendor":"Acme"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "adjust inventory: boom" {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestUpdateInventoryErrorBodyIsSummarized(t *testing.T) {
	items := make([]shopify.ItemLocation, 20)
	failures := make([]error, 0, len(items))
	for range items {
		failures = append(failures, context.DeadlineExceeded)
	}
	svc := &mockService{result: inventory.Result{
		Items:    items,
		Err:      errors.New("adjust inventory: many failures"),
		Failures: failures,
	}}
	rr := do(newHandler(svc), http.MethodPost, "/update-inventory", `{"vendor":"Acme"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "adjust inventory: 20 of 20 items failed, first: context deadline exceeded"
	if body["error"] != want {
		t.Fatalf("error body = %q, want %q", body["error"], want)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rr := do(newHandler(&mockService{}), http.MethodGet, "/update-inventory", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func newRemote(t *testing.T) (http.Handler, *shopifytest.Server) {
	t.Helper()
	remote := shopifytest.NewServer()
	t.Cleanup(remote.Close)
	syncer := inventory.NewSyncer(shopify.NewService(remote.Config()), zap.NewNop())
	return newHandler(syncer), remote
}

func TestUpdateInventoryEndToEnd(t *testing.T) {
	h, remote := newRemote(t)
	remote.Data("productsByVendor", shopifytest.VendorProducts(11, 12, 13))
	remote.Data("locations", shopifytest.Locations(5, 6))
	remote.Data("adjustInventoryQuantities", shopifytest.AdjustOK())

	rr := do(h, http.MethodPost, "/update-inventory", `{"vendor":"Acme"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", rr.Body.String())
	}

	if got := remote.Calls("productsByVendor")[0].Variables["query"]; got != `vendor:"Acme"` {
		t.Fatalf("vendor filter = %v", got)
	}
	calls := remote.Calls("adjustInventoryQuantities")
	if len(calls) != 3 {
		t.Fatalf("expected 3 mutations, got %d", len(calls))
	}
	seen := map[interface{}]bool{}
	for _, c := range calls {
		input := c.Variables["input"].(map[string]interface{})
		if input["reason"] != "correction" {
			t.Fatalf("unexpected reason: %v", input["reason"])
		}
		change := input["changes"].([]interface{})[0].(map[string]interface{})
		if change["delta"] != float64(1) || change["locationId"] != shopifytest.LocationID(5) {
			t.Fatalf("unexpected change: %v", change)
		}
		seen[change["inventoryItemId"]] = true
	}
	for _, item := range []int{11, 12, 13} {
		if !seen[shopifytest.InventoryItemID(item)] {
			t.Fatalf("item %d was not adjusted", item)
		}
	}
}

func TestUpdateInventoryEndToEndUserErrors(t *testing.T) {
	h, remote := newRemote(t)
	remote.Data("productsByVendor", shopifytest.VendorProducts(11))
	remote.Data("locations", shopifytest.Locations(5))
	remote.Data("adjustInventoryQuantities", M{"inventoryAdjustQuantities": M{
		"userErrors": []M{{"field": []string{"input"}, "message": "not stocked"}},
	}})

	rr := do(h, http.MethodPost, "/update-inventory", `{"vendor":"Acme"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not stocked") {
		t.Fatalf("expected user error in body, got %q", rr.Body.String())
	}
}

func TestProductEndToEnd(t *testing.T) {
	h, remote := newRemote(t)
	remote.Data("productByTitle", M{"products": shopifytest.Edges(M{
		"id":       shopifytest.ProductID(1),
		"title":    "Café & Co",
		"vendor":   "Nectar",
		"variants": shopifytest.Edges(shopifytest.VariantNode(1, 11)),
	})})
	remote.Data("inventoryItemLevels", shopifytest.InventoryItem(11, 5, shopifytest.Int(7)))

	rr := do(h, http.MethodGet, "/product/Caf%C3%A9%20%26%20Co", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var p shopify.Product
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != shopifytest.ProductID(1) || p.Title != "Café & Co" {
		t.Fatalf("unexpected product %+v", p)
	}
	if got := remote.Calls("productByTitle")[0].Variables["query"]; got != `title:"Café & Co"` {
		t.Fatalf("title filter = %v", got)
	}
	if len(remote.Calls("inventoryItemLevels")) != 1 {
		t.Fatal("expected inventory lookup for first variant")
	}
}

func TestUpdateMetafieldEndToEndMissingKey(t *testing.T) {
	h, remote := newRemote(t)
	remote.Data("productByTitle", M{"products": shopifytest.Edges(M{
		"id":       shopifytest.ProductID(1),
		"title":    "Blend",
		"variants": shopifytest.Edges(),
		"metafields": shopifytest.Edges(M{
			"id": "gid://shopify/Metafield/5", "namespace": "custom", "key": "color", "value": "red",
		}),
	})})

	rr := do(h, http.MethodPost, "/update-metafield", `{"title":"Blend","metafieldKey":"size","newValue":"L"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if len(remote.Calls("productMetafieldUpdate")) != 0 {
		t.Fatal("no mutation expected for a missing metafield")
	}
}
