// Package secretbox cifra valores cortos (ej: el identificador de dispositivo de
// la cookie clientId) con AES-256-GCM. Cada valor lleva su propio nonce
// aleatorio; el formato es hex(nonce) + ":" + hex(ciphertext).
package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	keyLen = 32 // AES-256
	sep    = ":"
)

// ErrInvalidFormat el valor no tiene la forma nonce_hex:ciphertext_hex.
var ErrInvalidFormat = errors.New("secretbox: formato inválido, esperado nonce_hex:ciphertext_hex")

// Box cifra/descifra con una clave inyectada. Es seguro para uso concurrente.
type Box struct {
	aead cipher.AEAD
}

// New construye un Box con una clave de 32 bytes.
func New(key []byte) (*Box, error) {
	if len(key) != keyLen {
		return nil, fmt.Errorf("secretbox: clave inválida: %d bytes (requiere %d)", len(key), keyLen)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secretbox: aes: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secretbox: gcm: %w", err)
	}
	return &Box{aead: aead}, nil
}

// ParseKey acepta base64 (std o raw), hex de 64 caracteres o 32 bytes crudos.
// Cualquier otro valor se deriva con SHA-256, así un SECRET_KEY de longitud
// arbitraria sirve como material de clave.
func ParseKey(s string) []byte {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == keyLen {
		return b
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil && len(b) == keyLen {
		return b
	}
	if len(s) == 2*keyLen {
		if b, err := hex.DecodeString(s); err == nil {
			return b
		}
	}
	if len(s) == keyLen {
		return []byte(s)
	}
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

// DeriveKey obtiene una clave de 32 bytes independiente para label a partir
// de un secreto compartido (HKDF-SHA256). Dos labels distintos nunca comparten
// clave, aunque el secreto sea el mismo.
func DeriveKey(secret, label string) ([]byte, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("secretbox: secreto vacío")
	}
	key := make([]byte, keyLen)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(label))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("secretbox: hkdf: %w", err)
	}
	return key, nil
}

// Seal cifra plain con un nonce nuevo.
func (b *Box) Seal(plain string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secretbox: nonce: %w", err)
	}
	ct := b.aead.Seal(nil, nonce, []byte(plain), nil)
	return hex.EncodeToString(nonce) + sep + hex.EncodeToString(ct), nil
}

// Open descifra y autentica un valor producido por Seal.
func (b *Box) Open(sealed string) (string, error) {
	nonceHex, ctHex, ok := strings.Cut(sealed, sep)
	if !ok {
		return "", ErrInvalidFormat
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != b.aead.NonceSize() {
		return "", ErrInvalidFormat
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", ErrInvalidFormat
	}
	pt, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("secretbox: auth/decrypt: %w", err)
	}
	return string(pt), nil
}
