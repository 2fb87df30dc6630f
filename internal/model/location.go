package model

// State is a row in the small preloaded state lookup table.
type State struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StateCode string `json:"state_code"`
}

// City references its parent state and carries a denormalized copy of the
// state code for display without a join.
type City struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StateID   string `json:"state_id"`
	StateCode string `json:"state_code"`
}
