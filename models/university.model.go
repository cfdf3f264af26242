package models

type University struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"size:255;not null;unique" json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearbyUniversity is a University annotated with its distance from a point.
type NearbyUniversity struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Distance  float64 `json:"distance"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
