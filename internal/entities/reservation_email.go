package entities

type ReservationEmailData struct {
	GuestName         string
	ReservationCode   string
	RestaurantName    string
	PartySize         int
	DateTimeFormatted string
	OccasionType      string
	SpecialRequests   string
	Status            string
	CurrentYear       int
}
