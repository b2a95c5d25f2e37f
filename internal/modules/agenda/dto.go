package agenda

type CreateAgendaRequest struct {
	Title           string  `json:"title" binding:"required"`
	Type            string  `json:"type" binding:"required"`
	ServiceRef      string  `json:"service_ref"`
	DurationMinutes int     `json:"duration_minutes" binding:"required"`
	CapacityPerSlot int     `json:"capacity_per_slot" binding:"required"`
	Price           float64 `json:"price"`
	PromotionPolicy string  `json:"promotion_policy"`
}
