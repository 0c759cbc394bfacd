package users

type listUsersQuery struct {
	Search *string `json:"search" query:"search"`
	Role   *string `json:"role" query:"role" validate:"omitempty,oneof=reader librarian admin"`
}

type createUserPayload struct {
	Username   string `json:"username" form:"username" mod:"trim" validate:"required,max=50"`
	Password   string `json:"password" form:"password" validate:"required"`
	Email      string `json:"email" form:"email" mod:"trim" validate:"omitempty,email,max=100"`
	FullName   string `json:"full_name" form:"full_name" mod:"trim" validate:"max=150"`
	Phone      string `json:"phone" form:"phone" mod:"trim" validate:"max=20"`
	CardNumber string `json:"card_number" form:"card_number" mod:"trim" validate:"max=20"`
	Role       string `json:"role" form:"role" mod:"trim" default:"reader" validate:"oneof=reader librarian admin"`
	MaxBooks   int    `json:"max_books" form:"max_books" validate:"omitempty,min=1"`
}

type updateUserPayload struct {
	Password   string `json:"password" form:"password"`
	Email      string `json:"email" form:"email" mod:"trim" validate:"omitempty,email,max=100"`
	FullName   string `json:"full_name" form:"full_name" mod:"trim" validate:"max=150"`
	Phone      string `json:"phone" form:"phone" mod:"trim" validate:"max=20"`
	CardNumber string `json:"card_number" form:"card_number" mod:"trim" validate:"max=20"`
	Role       string `json:"role" form:"role" mod:"trim" validate:"required,oneof=reader librarian admin"`
	MaxBooks   int    `json:"max_books" form:"max_books" validate:"omitempty,min=1"`
}
