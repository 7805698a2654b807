package models

// Grant is the set of permissions a token carries for a single room
type Grant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

// FullAccessGrant lets the holder join room, publish and subscribe.
func FullAccessGrant(room string) Grant {
	return Grant{
		Room:         room,
		RoomJoin:     true,
		CanPublish:   true,
		CanSubscribe: true,
	}
}

// IsFullAccess reports whether all three permission flags are set.
func (g Grant) IsFullAccess() bool {
	return g.RoomJoin && g.CanPublish && g.CanSubscribe
}
