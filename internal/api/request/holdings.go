package request

// CreateLotRequest represents the request body for adding a lot to the
// ledger. PurchaseDate accepts "2006-01-02" or RFC 3339.
type CreateLotRequest struct {
	Identifier    string  `json:"identifier"`
	Symbol        string  `json:"symbol"`
	DisplayName   string  `json:"displayName"`
	Amount        float64 `json:"amount"`
	PurchasePrice float64 `json:"purchasePrice"`
	PurchaseDate  string  `json:"purchaseDate"`
}

// UpdateLotRequest represents the request body for patching a lot. Nil
// fields are left unchanged; the lot ID comes from the URL and cannot be
// patched.
type UpdateLotRequest struct {
	Identifier    *string  `json:"identifier,omitempty"`
	Symbol        *string  `json:"symbol,omitempty"`
	DisplayName   *string  `json:"displayName,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	PurchasePrice *float64 `json:"purchasePrice,omitempty"`
	PurchaseDate  *string  `json:"purchaseDate,omitempty"`
}
