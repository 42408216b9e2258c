package runner

// MarketSection mirrors one catalog section as served by GET /v1/market.
type MarketSection struct {
	Key   string         `json:"key"`
	Label string         `json:"label"`
	Items map[string]int `json:"items"`
}

// MarketView mirrors GET /v1/market.
type MarketView struct {
	Vendor struct {
		Name  string `json:"name"`
		Model string `json:"model,omitempty"`
	} `json:"vendor"`
	Sections []MarketSection `json:"sections"`
}

// Receipt mirrors the 201 body of POST /v1/orders.
type Receipt struct {
	Actor  string   `json:"actor"`
	Items  []string `json:"items"`
	Total  int      `json:"total"`
	Method string   `json:"method"`
}

// Rejection mirrors the 4xx body of POST /v1/orders.
type Rejection struct {
	Error        string `json:"error"`
	Reason       string `json:"reason"`
	Failure      string `json:"failure,omitempty"`
	RetrySeconds int    `json:"retry_seconds,omitempty"`
}

// Event is one parsed SSE message from /v1/events/actors/{actor}.
// The stream carries the type on the event line and the payload on
// the data line.
type Event struct {
	Type string
	Data map[string]interface{}
}

// Vec3 is a world position as accepted by the position endpoint.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}
