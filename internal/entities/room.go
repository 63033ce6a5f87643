package entities

type RoomType struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	MaxGuests       int    `json:"maxGuests"`
	PriceCentsNight int64  `json:"priceCentsNight"`
}

type Room struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	RoomTypeID string    `json:"roomTypeId"`
	RoomType   *RoomType `json:"roomType,omitempty"`
}

// MaxGuests is the guest limit for the room, or 0 when the room type has not
// been loaded.
func (r Room) MaxGuests() int {
	if r.RoomType == nil {
		return 0
	}
	return r.RoomType.MaxGuests
}
