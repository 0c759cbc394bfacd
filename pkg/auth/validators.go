package auth

// LoginPayload represents the login form.
type LoginPayload struct {
	Username string `json:"username" form:"username" validate:"required,max=50"`
	Password string `json:"password" form:"password" validate:"required,max=50"`
}
