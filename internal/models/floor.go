package models

import "time"

// Floor groups rooms; floor names are unique across the hostel.
type Floor struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FloorWithRooms is the admin listing shape: a floor plus its rooms.
type FloorWithRooms struct {
	Floor
	Rooms []Room `json:"rooms"`
}
