package store

// Merchant is one captured business listing.
type Merchant struct {
	ID         string   `json:"id"`
	RunID      string   `json:"run_id,omitempty"`
	Name       string   `json:"name"`
	Phones     []string `json:"phones,omitempty"`
	Address    string   `json:"address,omitempty"`
	Hours      string   `json:"hours,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	RawText    string   `json:"raw_text,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	CapturedAt int64    `json:"captured_at"` // ms
	CreatedAt  int64    `json:"created_at"`  // ms
}

// Run is the bookkeeping row for one collection session.
type Run struct {
	ID             string `json:"id"`
	Label          string `json:"label,omitempty"`
	Status         string `json:"status"` // running, done, failed, cancelled
	PagesSeen      int    `json:"pages_seen"`
	CardsSeen      int    `json:"cards_seen"`
	MerchantsSaved int    `json:"merchants_saved"`
	Error          string `json:"error,omitempty"`
	StartedAt      int64  `json:"started_at"` // ms
	FinishedAt     *int64 `json:"finished_at,omitempty"`
}
