package shopify

// GetRaw keeps a response fragment undecoded for diagnostics.
type GetRaw struct {
	Raw []byte
}

func (g *GetRaw) UnmarshalJSON(data []byte) error {
	g.Raw = append(g.Raw[:0], data...)
	return nil
} // ./UnmarshalJSON

func (g GetRaw) String() string {
	return string(g.Raw)
} // ./String
