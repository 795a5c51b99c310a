package shopifytest

import "fmt"

type M = map[string]interface{}

// Edges wraps nodes in a GraphQL connection.
func Edges(nodes ...interface{}) M {
	edges := make([]M, 0, len(nodes))
	for _, n := range nodes {
		edges = append(edges, M{"node": n})
	}
	return M{"edges": edges}
} // ./Edges

func ProductID(n int) string {
	return fmt.Sprintf("gid://shopify/Product/%d", n)
} // ./ProductID

func InventoryItemID(n int) string {
	return fmt.Sprintf("gid://shopify/InventoryItem/%d", n)
} // ./InventoryItemID

func LocationID(n int) string {
	return fmt.Sprintf("gid://shopify/Location/%d", n)
} // ./LocationID

// VariantNode is a variant node whose inventory item is InventoryItemID(item).
func VariantNode(n, item int) M {
	return M{
		"id":            fmt.Sprintf("gid://shopify/ProductVariant/%d", n),
		"title":         "Default Title",
		"inventoryItem": M{"id": InventoryItemID(item)},
	}
} // ./VariantNode

// VendorProducts answers productsByVendor with one single-variant product per
// inventory item number.
func VendorProducts(items ...int) M {
	nodes := make([]interface{}, 0, len(items))
	for i, item := range items {
		nodes = append(nodes, M{
			"title":    fmt.Sprintf("Product %d", i+1),
			"variants": Edges(VariantNode(i+1, item)),
		})
	}
	return M{"products": Edges(nodes...)}
} // ./VendorProducts

// Locations answers the locations query.
func Locations(ids ...int) M {
	nodes := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, M{"id": LocationID(id), "name": fmt.Sprintf("Location %d", id)})
	}
	return M{"locations": Edges(nodes...)}
} // ./Locations

// InventoryItem answers inventoryItemLevels with a single level whose
// "available" bucket is set; nil levels yields an item without levels.
func InventoryItem(item, location int, available *int) M {
	levels := Edges()
	if available != nil {
		levels = Edges(M{
			"id":       fmt.Sprintf("gid://shopify/InventoryLevel/%d?inventory_item_id=%d", location, item),
			"location": M{"id": LocationID(location)},
			"quantities": []M{
				{"name": "available", "quantity": *available},
				{"name": "on_hand", "quantity": *available},
			},
		})
	}
	return M{"inventoryItem": M{
		"id":              InventoryItemID(item),
		"inventoryLevels": levels,
	}}
} // ./InventoryItem

func AdjustOK() M {
	return M{"inventoryAdjustQuantities": M{"userErrors": []M{}}}
} // ./AdjustOK

func Int(n int) *int {
	return &n
} // ./Int
