package auth

// RegisterRequest body de POST /api/usuarios.
type RegisterRequest struct {
	Nombre    string `json:"nombre"`
	ApellidoP string `json:"apellidoP"`
	ApellidoM string `json:"apellidoM"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Telefono  string `json:"telefono"`
}

type RegisterResponse struct {
	UserID int64 `json:"userId"`
}
