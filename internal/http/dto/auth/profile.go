package auth

import "time"

// ProfileResponse datos públicos de la cuenta (GET /api/usuarios/perfil).
type ProfileResponse struct {
	UserID           int64      `json:"idUsuarios"`
	Nombre           string     `json:"Nombre"`
	ApellidoP        string     `json:"ApellidoP"`
	ApellidoM        string     `json:"ApellidoM,omitempty"`
	Correo           string     `json:"Correo"`
	Telefono         string     `json:"Telefono,omitempty"`
	Rol              string     `json:"Rol"`
	FotoPerfil       string     `json:"foto_Perfil,omitempty"`
	MFAEnabled       bool       `json:"mfaEnabled"`
	FechaActualizada *time.Time `json:"Fecha_ActualizacionF,omitempty"`
}

// UpdateFieldRequest body de PATCH /api/usuarios/perfil/{id}/{field}.
type UpdateFieldRequest struct {
	Value string `json:"value"`
}

// UpdateAvatarRequest body de PATCH /api/usuarios/perfil/{id}/foto.
type UpdateAvatarRequest struct {
	FotoPerfil string `json:"foto_perfil"`
}
