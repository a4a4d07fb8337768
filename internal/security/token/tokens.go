package tokens

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
)

// recoveryAlphabet excluye caracteres ambiguos (0/O, 1/I/L) porque el código se
// teclea desde el correo.
const recoveryAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// GenerateOpaqueToken genera un token aleatorio base64url sin padding.
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("tokens: random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateRecoveryCode genera un código de n caracteres para recuperación de contraseña.
func GenerateRecoveryCode(n int) (string, error) {
	max := big.NewInt(int64(len(recoveryAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("tokens: random: %w", err)
		}
		out[i] = recoveryAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// Equal compara en tiempo constante.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
