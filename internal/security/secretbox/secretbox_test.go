package secretbox

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = byte(i + 1)
	}
	return k
}

func TestSealOpen_RoundTrip(t *testing.T) {
	box, err := New(testKey())
	require.NoError(t, err)

	sealed, err := box.Seal("6f1c0e5e-2b8e-4c55-9a5e-0a4c1b7f9d21")
	require.NoError(t, err)

	nonceHex, ctHex, ok := strings.Cut(sealed, ":")
	require.True(t, ok)
	_, err = hex.DecodeString(nonceHex)
	require.NoError(t, err)
	_, err = hex.DecodeString(ctHex)
	require.NoError(t, err)

	got, err := box.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "6f1c0e5e-2b8e-4c55-9a5e-0a4c1b7f9d21", got)
}

func TestSeal_NonceIsRandom(t *testing.T) {
	box, _ := New(testKey())
	a, _ := box.Seal("x")
	b, _ := box.Seal("x")
	require.NotEqual(t, a, b)
}

func TestOpen_Rejects(t *testing.T) {
	box, _ := New(testKey())
	sealed, _ := box.Seal("hola")

	_, err := box.Open("sin-separador")
	require.ErrorIs(t, err, ErrInvalidFormat)

	_, err = box.Open("zz:00")
	require.ErrorIs(t, err, ErrInvalidFormat)

	// ciphertext alterado
	tampered := sealed[:len(sealed)-2] + "00"
	if tampered == sealed {
		tampered = sealed[:len(sealed)-2] + "11"
	}
	_, err = box.Open(tampered)
	require.Error(t, err)

	// otra clave
	other := testKey()
	other[0] ^= 0xff
	box2, _ := New(other)
	_, err = box2.Open(sealed)
	require.Error(t, err)
}

func TestNew_KeyLength(t *testing.T) {
	_, err := New([]byte("corta"))
	require.Error(t, err)
}

func TestParseKey(t *testing.T) {
	raw := testKey()
	require.Equal(t, raw, ParseKey(base64.StdEncoding.EncodeToString(raw)))
	require.Equal(t, raw, ParseKey(hex.EncodeToString(raw)))
	require.Len(t, ParseKey("un secreto cualquiera"), 32)
	require.Equal(t, ParseKey("un secreto cualquiera"), ParseKey("un secreto cualquiera"))
}

func TestDeriveKey_SeparatesLabels(t *testing.T) {
	secret := "0123456789abcdef0123"
	k1, err := DeriveKey(secret, "clientId")
	require.NoError(t, err)
	require.Len(t, k1, 32)

	again, err := DeriveKey(secret, "clientId")
	require.NoError(t, err)
	require.Equal(t, k1, again)

	k2, err := DeriveKey(secret, "otro")
	require.NoError(t, err)
	require.NotEqual(t, k1, k2)
	require.NotEqual(t, ParseKey(secret), k1, "la clave derivada no es la del secreto")

	_, err = DeriveKey("  ", "clientId")
	require.Error(t, err)
}
