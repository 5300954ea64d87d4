package recovery

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"trustlayer/internal/audit"
	credstore "trustlayer/internal/credential/store"
	"trustlayer/internal/identity"
	idstore "trustlayer/internal/identity/store"
	dErrors "trustlayer/pkg/domain-errors"

	"github.com/stretchr/testify/suite"
)

type RecoverySuite struct {
	suite.Suite
	service  *Service
	identity identity.Record
	auditor  *recordingAuditor
}

func TestRecoverySuite(t *testing.T) {
	suite.Run(t, new(RecoverySuite))
}

func (s *RecoverySuite) SetupTest() {
	identities := idstore.NewInMemoryStore()
	credentials := credstore.NewInMemoryStore()
	idService := identity.NewService(identities, credentials)

	var err error
	s.identity, err = idService.Create(context.Background(), "Alex Rivera", identity.TypeProfessional)
	s.Require().NoError(err)

	s.auditor = &recordingAuditor{}
	s.service = NewService(idService, WithAuditor(s.auditor))
}

func (s *RecoverySuite) TestSeedPhraseGating() {
	s.Run("copy is blocked while hidden", func() {
		_, err := s.service.CopySeed(context.Background(), s.identity.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeSecretHidden))
	})

	s.Run("reveal unlocks copy", func() {
		words, err := s.service.RevealSeed(context.Background(), s.identity.ID)
		s.Require().NoError(err)
		s.Len(words, 12)

		phrase, err := s.service.CopySeed(context.Background(), s.identity.ID)
		s.Require().NoError(err)
		s.Equal(strings.Join(words, " "), phrase)
	})

	s.Run("hide re-locks copy", func() {
		s.Require().NoError(s.service.HideSeed(context.Background(), s.identity.ID))
		_, err := s.service.CopySeed(context.Background(), s.identity.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeSecretHidden))
	})
}

func (s *RecoverySuite) TestRecoveryKitSeedVisibility() {
	ctx := context.Background()

	s.Run("hidden phrase serializes as the placeholder", func() {
		download, err := s.service.BuildKit(ctx, s.identity.ID)
		s.Require().NoError(err)
		s.Equal("alex_rivera_recovery_kit.json", download.Filename)

		var kit Kit
		s.Require().NoError(json.Unmarshal(download.Payload, &kit))
		s.Equal(HiddenPlaceholder, kit.SeedPhrase, "the field is present but masked")
		s.Equal(s.identity.DID.String(), kit.DID)
	})

	s.Run("revealed phrase lands in the kit", func() {
		words, err := s.service.RevealSeed(ctx, s.identity.ID)
		s.Require().NoError(err)

		download, err := s.service.BuildKit(ctx, s.identity.ID)
		s.Require().NoError(err)

		var kit Kit
		s.Require().NoError(json.Unmarshal(download.Payload, &kit))
		s.Equal(strings.Join(words, " "), kit.SeedPhrase)
	})

	s.Run("hiding again re-masks subsequent kits", func() {
		s.Require().NoError(s.service.HideSeed(ctx, s.identity.ID))

		download, err := s.service.BuildKit(ctx, s.identity.ID)
		s.Require().NoError(err)

		var kit Kit
		s.Require().NoError(json.Unmarshal(download.Payload, &kit))
		s.Equal(HiddenPlaceholder, kit.SeedPhrase)
	})
}

func (s *RecoverySuite) TestRecoveryKitListsOnlyConfirmedGuardians() {
	ctx := context.Background()

	_, err := s.service.AddGuardian(ctx, s.identity.ID, "0xAbc123", "Morgan")
	s.Require().NoError(err)
	_, err = s.service.AddGuardian(ctx, s.identity.ID, "0xDef456", "Jamie")
	s.Require().NoError(err)
	_, err = s.service.ConfirmGuardian(ctx, s.identity.ID, "0xDef456")
	s.Require().NoError(err)

	download, err := s.service.BuildKit(ctx, s.identity.ID)
	s.Require().NoError(err)

	var kit Kit
	s.Require().NoError(json.Unmarshal(download.Payload, &kit))
	s.Require().Len(kit.Guardians, 1, "pending guardians stay out of the kit")
	s.Equal("0xDef456", kit.Guardians[0].Address)
	s.Equal(identity.GuardianConfirmed, kit.Guardians[0].Status)
}

func (s *RecoverySuite) TestGuardianLifecycle() {
	ctx := context.Background()

	s.Run("adding a guardian starts pending", func() {
		g, err := s.service.AddGuardian(ctx, s.identity.ID, "0xAbc123", "Morgan")
		s.Require().NoError(err)
		s.Equal(identity.GuardianPending, g.Status)
	})

	s.Run("duplicate address is rejected case-insensitively", func() {
		_, err := s.service.AddGuardian(ctx, s.identity.ID, "0xABC123", "Morgan Again")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateGuardian))
	})

	s.Run("confirmation counts toward quorum", func() {
		_, err := s.service.ConfirmGuardian(ctx, s.identity.ID, "0xAbc123")
		s.Require().NoError(err)

		status, err := s.service.Status(ctx, s.identity.ID)
		s.Require().NoError(err)
		s.Equal(1, status.GuardiansConfirmed)
		s.False(status.GuardianQuorumMet)

		_, err = s.service.AddGuardian(ctx, s.identity.ID, "0xDef456", "Jamie")
		s.Require().NoError(err)
		_, err = s.service.ConfirmGuardian(ctx, s.identity.ID, "0xDef456")
		s.Require().NoError(err)

		status, err = s.service.Status(ctx, s.identity.ID)
		s.Require().NoError(err)
		s.True(status.GuardianQuorumMet)
	})

	s.Run("removal drops a confirmed guardian below quorum", func() {
		s.Require().NoError(s.service.RemoveGuardian(ctx, s.identity.ID, "0xDef456"))
		status, err := s.service.Status(ctx, s.identity.ID)
		s.Require().NoError(err)
		s.False(status.GuardianQuorumMet)
	})

	s.Run("confirming an unknown guardian fails", func() {
		_, err := s.service.ConfirmGuardian(ctx, s.identity.ID, "0x999999")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RecoverySuite) TestMultisigConfiguration() {
	signers := []identity.MultisigSigner{
		{Address: "0xAbc123", Role: "Primary (You)"},
		{Address: "0xDef456", Role: "Recovery Key 1", Status: identity.SignerActive},
		{Address: "0x987654", Role: "Recovery Key 2", Status: identity.SignerPending},
	}

	cfg, err := s.service.ConfigureMultisig(context.Background(), s.identity.ID, 2, signers)
	s.Require().NoError(err)
	s.Equal(2, cfg.Required)
	s.Equal(3, cfg.Total, "total is derived from the signer list")
	s.Require().Len(cfg.Signers, 3)
	s.Equal(identity.SignerActive, cfg.Signers[0].Status, "omitted status defaults to active")
	s.Equal(identity.SignerPending, cfg.Signers[2].Status)

	status, err := s.service.Status(context.Background(), s.identity.ID)
	s.Require().NoError(err)
	s.True(status.MultisigConfigured)

	download, err := s.service.BuildKit(context.Background(), s.identity.ID)
	s.Require().NoError(err)
	var kit Kit
	s.Require().NoError(json.Unmarshal(download.Payload, &kit))
	s.Require().NotNil(kit.Multisig)
	s.Require().Len(kit.Multisig.Signers, 3)
	s.Equal("0xDef456", kit.Multisig.Signers[1].Address)

	_, err = s.service.ConfigureMultisig(context.Background(), s.identity.ID, 4, signers)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidThreshold))

	_, err = s.service.ConfigureMultisig(context.Background(), s.identity.ID, 1, nil)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidThreshold))
}

type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Emit(_ context.Context, event audit.Event) error {
	r.events = append(r.events, event)
	return nil
}
