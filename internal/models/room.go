package models

import "time"

// Room is a bookable hostel room. Names are unique; capacity is a positive
// integer and occupancy may never exceed it.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	FloorID   string    `db:"floor_id" json:"floor_id"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RoomOccupancy is one row of the occupancy report.
type RoomOccupancy struct {
	FloorName string `db:"floor_name" json:"floor_name"`
	RoomName  string `db:"room_name" json:"room_name"`
	Capacity  int    `db:"capacity" json:"capacity"`
	Occupants int    `db:"occupants" json:"occupants"`
}
