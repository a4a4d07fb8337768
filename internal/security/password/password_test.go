package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// parámetros baratos para que los tests no tarden
var testParams = Params{Memory: 1024, Time: 1, Parallelism: 1}

func TestHashVerify(t *testing.T) {
	h := NewHasher(testParams)

	digest, err := h.Hash("P1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify("P1", digest)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.Verify("P2", digest)
	require.NoError(t, err)
	require.False(t, ok)

	other, err := h.Hash("P1")
	require.NoError(t, err)
	require.NotEqual(t, digest, other, "salt aleatoria")
}

func TestVerify_UsesParamsFromDigest(t *testing.T) {
	old := NewHasher(Params{Memory: 2048, Time: 2, Parallelism: 2})
	digest, err := old.Hash("secreto")
	require.NoError(t, err)

	ok, err := NewHasher(testParams).Verify("secreto", digest)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	h := NewHasher(testParams)
	for _, d := range []string{
		"",
		"plaintext",
		"$2b$10$abcdefghijklmnopqrstuv",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$***$aGFzaA",
	} {
		ok, err := h.Verify("P1", d)
		require.ErrorIs(t, err, ErrMalformedHash, d)
		require.False(t, ok)
	}
}

func TestHash_Empty(t *testing.T) {
	_, err := NewHasher(testParams).Hash("")
	require.Error(t, err)
}

func TestPolicy(t *testing.T) {
	bl, err := ReadBlacklist(strings.NewReader("# comunes\nPassword123\n\nqwerty\n"))
	require.NoError(t, err)

	p := Policy{MinLength: 8, RequireUpper: true, RequireDigit: true, Blacklist: bl}
	require.Empty(t, p.Validate("Alquila2024"))
	require.ElementsMatch(t, []string{"too_short", "missing_upper"}, p.Validate("abc1"))
	require.Contains(t, p.Validate("password123"), "common_password")
}

func TestPolicy_ZeroValueAcceptsAnything(t *testing.T) {
	for _, s := range []string{"P1", "a", "1234", "sin mayusculas"} {
		require.Empty(t, Policy{}.Validate(s), s)
	}
}
