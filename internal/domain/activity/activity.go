package activity

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event summarizes one state-changing action of a profile. Events are published
// keyed by profile id, so a profile's events stay in order on one partition.
type Event struct {
	ProfileID     string    `json:"profile_id"`
	Action        string    `json:"action"`
	CartCount     int       `json:"cart_count"`
	WishlistCount int       `json:"wishlist_count"`
	At            time.Time `json:"at"`
}

func (e Event) Key() string {
	return e.ProfileID
}

func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode activity event: %w", err)
	}
	return e, nil
}
