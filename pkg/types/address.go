package types

import "strings"

// Address is the postal address shape shared by user profiles and
// order shipping records.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipcode"`
	Country string `json:"country"`
}

// IsZero reports whether no field has been populated.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String renders the address on a single line for display.
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, part := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}
