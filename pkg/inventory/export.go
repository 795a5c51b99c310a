package inventory

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"inventorysync.com/pkg/shopify"
)

// WriteCSV writes one row per level with a column per quantity bucket.
// Buckets a level did not carry are left blank.
func WriteCSV(w io.Writer, levels []shopify.InventoryLevel) error {
	cw := csv.NewWriter(w)
	header := append([]string{"Inventory Level", "Inventory Item", "Location"}, shopify.QuantityNames...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, l := range levels {
		row := []string{l.ID, l.ItemID, l.LocationID}
		for _, name := range shopify.QuantityNames {
			q, ok := l.Quantity(name)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.Itoa(q))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write level %s", l.ID)
		}
	}
	cw.Flush()
	return cw.Error()
} // ./WriteCSV
