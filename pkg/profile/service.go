// Package profile is the support-facing profile surface. It demonstrates
// the contract every business handler follows: data is scoped by the
// effective identity from the execution context, and every irreversible
// external effect goes through the effect guard.
package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/voteagora/op-atlas-sub006/pkg/account"
	"github.com/voteagora/op-atlas-sub006/pkg/attestation"
	"github.com/voteagora/op-atlas-sub006/pkg/effectguard"
	"github.com/voteagora/op-atlas-sub006/pkg/execctx"
	"github.com/voteagora/op-atlas-sub006/pkg/notification"
	"github.com/voteagora/op-atlas-sub006/pkg/session"
	"github.com/voteagora/op-atlas-sub006/pkg/storage"
	"github.com/voteagora/op-atlas-sub006/pkg/verification"
)

// AttestationSchema identifies profile snapshot attestations.
const AttestationSchema = "atlas.profile.v1"

// Service implements profile reads and guarded profile effects.
type Service struct {
	factory  *execctx.Factory
	guard    *effectguard.Guard
	uploader *storage.Uploader
	issuer   *attestation.Issuer
	verifier *verification.Client
	notifier notification.Notifier
	now      func() time.Time
}

// Option is a function that configures a Service
type Option func(*Service)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a profile service.
func NewService(
	factory *execctx.Factory,
	guard *effectguard.Guard,
	uploader *storage.Uploader,
	issuer *attestation.Issuer,
	verifier *verification.Client,
	notifier notification.Notifier,
	opts ...Option,
) *Service {
	s := &Service{
		factory:  factory,
		guard:    guard,
		uploader: uploader,
		issuer:   issuer,
		verifier: verifier,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetProfile returns the account of the effective identity. Support
// staff impersonating a user see exactly what the user would see.
func (s *Service) GetProfile(ctx context.Context, sess session.Session) (account.Account, error) {
	ec, err := s.factory.Build(sess, execctx.Options{RequireUser: true})
	if err != nil {
		return account.Account{}, err
	}

	acct, err := ec.Store.Accounts().FindByID(ctx, ec.EffectiveID)
	if err != nil {
		return account.Account{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return acct, nil
}

// UploadAvatar stores a new avatar for the effective identity. Under
// impersonation the durable upload is mocked and the deterministic mock
// URL is returned instead.
func (s *Service) UploadAvatar(ctx context.Context, sess session.Session, name string, content []byte, contentType string) (storage.UploadResult, error) {
	ec, err := s.factory.Build(sess, execctx.Options{RequireUser: true})
	if err != nil {
		return storage.UploadResult{}, err
	}

	objectName := ec.EffectiveID + "/" + name
	return effectguard.Guarded(ctx, s.guard, "storage", "upload avatar "+objectName,
		func(ctx context.Context) (storage.UploadResult, error) {
			return s.uploader.Upload(ctx, objectName, content, contentType)
		},
		storage.MockUploadResult(name),
	)
}

// PublishAttestation issues an onchain attestation for the effective
// identity's profile snapshot.
func (s *Service) PublishAttestation(ctx context.Context, sess session.Session) (attestation.Attestation, error) {
	ec, err := s.factory.Build(sess, execctx.Options{RequireUser: true})
	if err != nil {
		return attestation.Attestation{}, err
	}

	acct, err := ec.Store.Accounts().FindByID(ctx, ec.EffectiveID)
	if err != nil {
		return attestation.Attestation{}, fmt.Errorf("failed to load profile: %w", err)
	}

	req := attestation.Request{
		Schema:    AttestationSchema,
		Recipient: acct.Address,
		Data:      map[string]string{"account_id": acct.ID, "name": acct.Name},
	}
	return effectguard.Guarded(ctx, s.guard, "attestation", "issue profile attestation",
		func(ctx context.Context) (attestation.Attestation, error) {
			return s.issuer.Issue(ctx, req)
		},
		attestation.MockAttestation(req, s.now()),
	)
}

// RevokeAttestation revokes a previously issued attestation. Revocation
// is as irreversible as issuance, so it goes through the same guard.
func (s *Service) RevokeAttestation(ctx context.Context, sess session.Session, uid string) (attestation.Revocation, error) {
	_, err := s.factory.Build(sess, execctx.Options{RequireUser: true})
	if err != nil {
		return attestation.Revocation{}, err
	}

	return effectguard.Guarded(ctx, s.guard, "attestation", "revoke attestation "+uid,
		func(ctx context.Context) (attestation.Revocation, error) {
			if err := s.issuer.Revoke(ctx, uid); err != nil {
				return attestation.Revocation{}, err
			}
			return attestation.Revocation{UID: uid, RevokedAt: s.now().UTC()}, nil
		},
		attestation.MockRevocation(uid, s.now()),
	)
}

// VerifyIdentity runs a paid identity verification check for the
// effective identity.
func (s *Service) VerifyIdentity(ctx context.Context, sess session.Session) (verification.Result, error) {
	ec, err := s.factory.Build(sess, execctx.Options{RequireUser: true})
	if err != nil {
		return verification.Result{}, err
	}

	acct, err := ec.Store.Accounts().FindByID(ctx, ec.EffectiveID)
	if err != nil {
		return verification.Result{}, fmt.Errorf("failed to load profile: %w", err)
	}

	return effectguard.Guarded(ctx, s.guard, "verification", "verify identity",
		func(ctx context.Context) (verification.Result, error) {
			return s.verifier.Verify(ctx, acct.ID, acct.Address)
		},
		verification.MockResult(acct.ID, s.now()),
	)
}

// SendWelcomeEmail emails the effective identity's address.
func (s *Service) SendWelcomeEmail(ctx context.Context, sess session.Session) (notification.SendResult, error) {
	ec, err := s.factory.Build(sess, execctx.Options{RequireUser: true})
	if err != nil {
		return notification.SendResult{}, err
	}

	acct, err := ec.Store.Accounts().FindByID(ctx, ec.EffectiveID)
	if err != nil {
		return notification.SendResult{}, fmt.Errorf("failed to load profile: %w", err)
	}

	data := notification.NotificationData{
		To:      acct.Email,
		Subject: "Welcome to Atlas",
		Body:    "Your profile is ready.",
	}
	return effectguard.Guarded(ctx, s.guard, "email", "send welcome email",
		func(ctx context.Context) (notification.SendResult, error) {
			return s.notifier.Send(data)
		},
		notification.MockSendResult(),
	)
}
