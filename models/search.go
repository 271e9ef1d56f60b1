package models

// MemberDocument is the flattened member projection indexed in Typesense.
type MemberDocument struct {
	ID          string  `json:"id"`
	MemberID    string  `json:"memberId"`
	CompanyName string  `json:"companyName"`
	Sector      string  `json:"sector"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Status      string  `json:"status"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	CreatedAtTs int64   `json:"createdAt"`
}

// SearchHit is one result row from the member search index.
type SearchHit struct {
	Document MemberDocument `json:"document"`
}

// SearchResult is the subset of the Typesense search response the API
// surfaces to clients.
type SearchResult struct {
	Found int         `json:"found"`
	Page  int         `json:"page"`
	Hits  []SearchHit `json:"hits"`
}
