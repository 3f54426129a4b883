package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manofwisdom/auth/pkg/token"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("returns 64 lowercase hex characters", func(t *testing.T) {
		t.Parallel()

		tok, err := token.Generate()
		require.NoError(t, err)
		assert.Len(t, tok, token.EncodedLen)
		assert.True(t, token.Valid(tok))
	})

	t.Run("successive tokens differ", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]bool)
		for range 100 {
			tok, err := token.Generate()
			require.NoError(t, err)
			assert.False(t, seen[tok], "duplicate token generated")
			seen[tok] = true
		}
	})
}

func TestHash(t *testing.T) {
	t.Parallel()

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		tok, err := token.Generate()
		require.NoError(t, err)
		assert.Equal(t, token.Hash(tok), token.Hash(tok))
	})

	t.Run("never equals the input", func(t *testing.T) {
		t.Parallel()

		tok, err := token.Generate()
		require.NoError(t, err)
		assert.NotEqual(t, tok, token.Hash(tok))
	})

	t.Run("known digest", func(t *testing.T) {
		t.Parallel()

		// sha256("abc")
		assert.Equal(t,
			"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
			token.Hash("abc"),
		)
	})
}

func TestValid(t *testing.T) {
	t.Parallel()

	valid, err := token.Generate()
	require.NoError(t, err)

	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"generated token", valid, true},
		{"empty", "", false},
		{"too short", valid[:63], false},
		{"too long", valid + "0", false},
		{"uppercase hex", "ABCDEF" + valid[6:], false},
		{"non-hex characters", "zz" + valid[2:], false},
		{"whitespace", " " + valid[1:], false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, token.Valid(tc.input))
		})
	}
}
