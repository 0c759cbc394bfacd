package reservations

type listAllQuery struct {
	Status *string `json:"status" query:"status" validate:"omitempty,oneof=reserved issued returned cancelled"`
}

type cancelPayload struct {
	ReservationDate string `json:"reservation_date" form:"reservation_date" mod:"trim" validate:"required"`
}

type updateStatusPayload struct {
	ReservationDate string `json:"reservation_date" form:"reservation_date" mod:"trim" validate:"required"`
	Status          string `json:"status" form:"status" mod:"trim" validate:"required,oneof=reserved issued returned cancelled"`
}
