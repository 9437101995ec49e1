package types

import "strings"

// Address is the shipping destination snapshotted onto an order. Stored as
// jsonb, and flattened into payment-provider session metadata for the card
// checkout path.
type Address struct {
	Details    string `json:"details" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Metadata flattens the address into the string map shape payment providers
// accept as opaque session metadata.
func (a Address) Metadata() map[string]string {
	return map[string]string{
		"details":     a.Details,
		"phone":       a.Phone,
		"city":        a.City,
		"postal_code": a.PostalCode,
	}
}

// AddressFromMetadata rebuilds an Address from provider session metadata.
func AddressFromMetadata(meta map[string]string) Address {
	return Address{
		Details:    meta["details"],
		Phone:      meta["phone"],
		City:       meta["city"],
		PostalCode: meta["postal_code"],
	}
}

// IsZero reports whether no address fields are set.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Details) == "" &&
		strings.TrimSpace(a.Phone) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.PostalCode) == ""
}
