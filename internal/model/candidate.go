package model

// Candidate is an instrument selected for a trading date, with its static attributes and price history.
type Candidate struct {
	Instrument Instrument `json:"instrument"`
	// Date is the trading day key.
	Date string `json:"date"`
	Rank int    `json:"rank"`
	// Total is the number of candidates ranked on the same date.
	Total      int                    `json:"total,omitempty"`
	Tags       []string               `json:"tags,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Daily      Series                 `json:"-"`
	Intraday   Series                 `json:"-"`
}
