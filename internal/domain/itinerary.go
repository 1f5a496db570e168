package domain

// LegType distinguishes riding a line from walking between platforms
type LegType string

const (
	LegRide LegType = "ride"
	LegWalk LegType = "walk"
)

// Leg is a maximal run of consecutive path edges on the same line
type Leg struct {
	Type  LegType `json:"type"`
	Line  string  `json:"line"`
	From  string  `json:"from"`
	To    string  `json:"to"`
	Stops int     `json:"stops"`
	Time  int     `json:"time"`
}

// Itinerary is the rider-facing answer to a find-path query.
// TotalTime is the sum of the rounded leg times, not the rounded sum of edge weights.
type Itinerary struct {
	TotalTime      int   `json:"total_time"`
	TotalTransfers int   `json:"total_transfers"`
	Steps          []Leg `json:"steps"`
}

// EmptyItinerary is returned when start and end resolve to the same node.
func EmptyItinerary() Itinerary {
	return Itinerary{Steps: []Leg{}}
}

// NetworkEvent is pushed to websocket clients whenever the active network changes
type NetworkEvent struct {
	Version  string `json:"version"`
	Stations int    `json:"stations"`
	Edges    int    `json:"edges"`
}
