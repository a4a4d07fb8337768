// Package empresa contiene los DTOs de /api/empresa y /api/email.
package empresa

import (
	"encoding/json"
	"strings"
	"time"
)

// CompanyResponse body de GET /api/empresa.
type CompanyResponse struct {
	ID            int64           `json:"id"`
	Direccion     string          `json:"direccion"`
	Correo        string          `json:"correo"`
	Telefono      string          `json:"telefono"`
	Slogan        string          `json:"slogan"`
	RedesSociales json.RawMessage `json:"redes_sociales,omitempty"`
	LogoURL       string          `json:"logo_url"`
	CreadoEn      time.Time       `json:"creado_en"`
	ActualizadoEn time.Time       `json:"actualizado_en"`
}

// UpsertRequest body de POST /api/empresa/actualizar.
type UpsertRequest struct {
	Direccion     string          `json:"direccion"`
	Correo        string          `json:"correo"`
	Telefono      string          `json:"telefono"`
	Slogan        string          `json:"slogan"`
	RedesSociales json.RawMessage `json:"redes_sociales"`
	LogoURL       string          `json:"logo_url"`
}

// UpdateFieldRequest body de PATCH /api/empresa/{campo}. Valor acepta un
// string o, para redes_sociales, un objeto/arreglo JSON.
type UpdateFieldRequest struct {
	Valor json.RawMessage `json:"valor"`
}

// Text devuelve el valor como texto plano.
func (r UpdateFieldRequest) Text() string {
	var s string
	if json.Unmarshal(r.Valor, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(r.Valor))
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ValidateEmailRequest body de POST /api/email/validate-email.
type ValidateEmailRequest struct {
	Email string `json:"email"`
}

type ValidateEmailResponse struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}
