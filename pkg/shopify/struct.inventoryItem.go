package shopify

// QuantityNames are the inventory buckets read for every level.
var QuantityNames = []string{
	"available",
	"incoming",
	"committed",
	"damaged",
	"on_hand",
	"quality_control",
	"reserved",
	"safety_stock",
}

type Quantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type InventoryLevel struct {
	ID         string     `json:"id"`
	Quantities []Quantity `json:"quantities"`
	ItemID     string     `json:"itemId,omitempty"`
	LocationID string     `json:"locationId,omitempty"`
}

// Quantity returns the named bucket's value and whether the level carried it.
func (l InventoryLevel) Quantity(name string) (int, bool) {
	for _, q := range l.Quantities {
		if q.Name == name {
			return q.Quantity, true
		}
	}
	return 0, false
} // ./Quantity

// ItemLocation addresses one inventory item at one location.
type ItemLocation struct {
	ItemID     string `json:"itemId"`
	LocationID string `json:"locationId"`
}

type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type inventoryLevelNode struct {
	ID       string `json:"id"`
	Location struct {
		ID string `json:"id"`
	} `json:"location"`
	Quantities []Quantity `json:"quantities"`
}

type inventoryItemNode struct {
	ID              string `json:"id"`
	InventoryLevels struct {
		Edges []struct {
			Node inventoryLevelNode `json:"node"`
		} `json:"edges"`
	} `json:"inventoryLevels"`
}

// firstLevel returns the item's first level, tagged with the item id and the
// level's own location.
func (n *inventoryItemNode) firstLevel() (InventoryLevel, bool) {
	if n == nil || len(n.InventoryLevels.Edges) == 0 {
		return InventoryLevel{}, false
	}
	l := n.InventoryLevels.Edges[0].Node
	return InventoryLevel{
		ID:         l.ID,
		Quantities: l.Quantities,
		ItemID:     n.ID,
		LocationID: l.Location.ID,
	}, true
} // ./firstLevel

// UserError is a mutation-level validation failure reported by the API.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}
