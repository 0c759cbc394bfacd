package copies

type copyPayload struct {
	BookID          int    `json:"book_id" form:"book_id" validate:"required"`
	InventoryNumber string `json:"inventory_number" form:"inventory_number" mod:"trim" validate:"required,max=50"`
	Condition       string `json:"condition" form:"condition" mod:"trim" validate:"omitempty,oneof=new good fair poor"`
	Location        string `json:"location" form:"location" mod:"trim" validate:"max=100"`
}
