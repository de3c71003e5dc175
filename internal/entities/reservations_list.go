package entities

type ReservationsList struct {
	Total        int                   `json:"total"`
	Filter       string                `json:"filter,omitempty"`
	Reservations []ReservationResponse `json:"reservations"`
}

type ReviewsList struct {
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	Reviews []ReviewResponse `json:"reviews"`
}
