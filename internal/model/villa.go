package model

import "time"

// Villa is the single bookable property.  The site only ever shows one,
// but the table is keyed so that a second listing needs no schema change.
//
// Fields:
//
//	ID               – primary key (uuid).
//	Price            – nightly rate in the configured currency.
//	MaxGuests        – upper bound for Booking.Guests.
//	Images/Amenities – stored as JSON arrays.
type Villa struct {
	ID               string     `json:"id" db:"id" yaml:"id"`                            // villas.id
	Name             string     `json:"name" db:"name" yaml:"name"`                      // villas.name
	Description      string     `json:"description" db:"description" yaml:"description"` // villas.description
	ShortDescription string     `json:"short_description" db:"short_description" yaml:"short_description"`
	Location         string     `json:"location" db:"location" yaml:"location"`       // villas.location
	Price            float64    `json:"price" db:"price" yaml:"price"`                // villas.price
	Bedrooms         int        `json:"bedrooms" db:"bedrooms" yaml:"bedrooms"`       // villas.bedrooms
	Bathrooms        int        `json:"bathrooms" db:"bathrooms" yaml:"bathrooms"`    // villas.bathrooms
	MaxGuests        int        `json:"max_guests" db:"max_guests" yaml:"max_guests"` // villas.max_guests
	Images           StringList `json:"images" db:"images" yaml:"images"`             // villas.images
	Amenities        StringList `json:"amenities" db:"amenities" yaml:"amenities"`    // villas.amenities
	CreatedAt        time.Time  `json:"created_at" db:"created_at" yaml:"-"`          // villas.created_at
}

// SampleVilla returns the listing the site ships with.  It seeds the
// in-memory store and is the default fixture of the seed command.
func SampleVilla() Villa {
	return Villa{
		ID:               "550e8400-e29b-41d4-a716-446655440000",
		Name:             "Luxury Beachfront Villa",
		Description:      "Experience the ultimate luxury getaway at our stunning beachfront villa. Nestled on the pristine shores of a private beach, this exquisite property offers breathtaking ocean views from every angle.",
		ShortDescription: "Stunning beachfront villa with private pool, direct beach access, and breathtaking ocean views.",
		Location:         "Malibu, California",
		Price:            1200.00,
		Bedrooms:         5,
		Bathrooms:        6,
		MaxGuests:        12,
		Images: StringList{
			"/images/villa-exterior.jpg",
			"/images/villa-interior-1.jpg",
			"/images/villa-interior-2.jpg",
			"/images/villa-bedroom.jpg",
			"/images/villa-bathroom.jpg",
			"/images/villa-pool.jpg",
			"/images/villa-beach.jpg",
			"/images/villa-dining.jpg",
		},
		Amenities: StringList{
			"Private Pool",
			"Direct Beach Access",
			"Ocean View",
			"Fully Equipped Kitchen",
			"Air Conditioning",
			"Free WiFi",
			"Smart TV",
			"Outdoor Dining Area",
			"BBQ Grill",
			"Parking",
			"Gym",
			"Home Theater",
			"Laundry Facilities",
			"24/7 Security",
			"Concierge Service",
		},
	}
}
