package identity

import (
	"strconv"
	"strings"
	"testing"

	dErrors "trustlayer/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates identity with derived DID and hidden seed", func(t *testing.T) {
		rec, err := New("Alex Rivera", TypeProfessional)
		require.NoError(t, err)

		assert.False(t, rec.ID.IsNil())
		assert.Equal(t, "Alex Rivera", rec.Name)
		assert.Equal(t, StatusInactive, rec.Status)
		assert.True(t, strings.HasPrefix(rec.DID.String(), "did:web3:0x"))
		assert.Equal(t, "web3", rec.DID.Method())
		assert.Len(t, rec.SeedPhrase, 12)
		assert.False(t, rec.SeedRevealed)
		assert.NotEmpty(t, rec.PublicKey)
		assert.NotEmpty(t, rec.PrivateKey)
		assert.NotEqual(t, rec.PublicKey, rec.PrivateKey)
	})

	t.Run("DID fragment matches an EVM address length", func(t *testing.T) {
		rec, err := New("Alex Rivera", TypeDeveloper)
		require.NoError(t, err)
		fragment := strings.TrimPrefix(rec.DID.String(), "did:web3:0x")
		assert.Len(t, fragment, 40)
	})

	t.Run("distinct identities get distinct key material", func(t *testing.T) {
		a, err := New("One", TypePersonal)
		require.NoError(t, err)
		b, err := New("Two", TypePersonal)
		require.NoError(t, err)
		assert.NotEqual(t, a.DID, b.DID)
		assert.NotEqual(t, a.SeedPhrase, b.SeedPhrase)
	})

	t.Run("description is trimmed and optional", func(t *testing.T) {
		rec, err := New("Alex", TypePersonal, WithDescription("  Side project persona  "))
		require.NoError(t, err)
		assert.Equal(t, "Side project persona", rec.Description)

		rec, err = New("Alex", TypePersonal)
		require.NoError(t, err)
		assert.Empty(t, rec.Description)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		_, err := New("   ", TypeAcademic)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidName))
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		_, err := New("Alex", Type("wizard"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseType(t *testing.T) {
	for _, valid := range []string{"professional", "Developer", "ACADEMIC", "personal"} {
		_, err := ParseType(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParseType("corporate")
	assert.Error(t, err)
}

func TestMultisigConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     MultisigConfig
		wantErr bool
	}{
		{"2 of 3 is valid", MultisigConfig{Required: 2, Total: 3, Signers: signers(3)}, false},
		{"1 of 1 is valid", MultisigConfig{Required: 1, Total: 1, Signers: signers(1)}, false},
		{"required above total", MultisigConfig{Required: 4, Total: 3, Signers: signers(3)}, true},
		{"zero required", MultisigConfig{Required: 0, Total: 3, Signers: signers(3)}, true},
		{"zero total", MultisigConfig{Required: 1, Total: 0}, true},
		{"signer list shorter than total", MultisigConfig{Required: 2, Total: 3, Signers: signers(2)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidThreshold))
				return
			}
			assert.NoError(t, err)
		})
	}

	t.Run("blank signer address", func(t *testing.T) {
		cfg := MultisigConfig{Required: 1, Total: 1, Signers: []MultisigSigner{{Address: "  "}}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// signers builds a placeholder signer set of the given size.
func signers(n int) []MultisigSigner {
	out := make([]MultisigSigner, n)
	for i := range out {
		out[i] = MultisigSigner{Address: "0x" + strconv.Itoa(1000+i), Role: "Recovery Key", Status: SignerActive}
	}
	return out
}

func TestGuardianHelpers(t *testing.T) {
	rec := Record{Guardians: []Guardian{
		{Address: "0xAbC1", Status: GuardianConfirmed},
		{Address: "0xDeF2", Status: GuardianPending},
	}}

	g, ok := rec.GuardianByAddress("0xabc1")
	assert.True(t, ok, "lookup is case-insensitive")
	assert.Equal(t, GuardianConfirmed, g.Status)

	_, ok = rec.GuardianByAddress("0x9999")
	assert.False(t, ok)

	assert.Equal(t, 1, rec.ConfirmedGuardians())
}
