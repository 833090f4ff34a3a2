package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserDTO struct {
	Id       string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type SessionResponse struct {
	IsAuthenticated bool     `json:"is_authenticated"`
	Confirmed       bool     `json:"confirmed"`
	User            *UserDTO `json:"user"`
}
