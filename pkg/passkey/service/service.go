package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	"github.com/yukiapp/yuki-server/pkg/passkey"
	"github.com/yukiapp/yuki-server/pkg/passkeystore"
	"github.com/yukiapp/yuki-server/pkg/wallet"
	"github.com/yukiapp/yuki-server/pkg/walletstore"
)

var (
	ErrNoPasskey         = errors.New("wallet has no passkey credential")
	ErrUnknownCredential = errors.New("unknown credential id")
	ErrChallengeUnusable = errors.New("challenge expired or already used")
	ErrCounterRegression = errors.New("signature counter regression")
)

// ChallengeStore is the narrow challenge persistence interface.
type ChallengeStore interface {
	Create(ctx context.Context, c *passkey.Challenge) error
	Consume(ctx context.Context, id uuid.UUID, sessionKey string) (*passkey.Challenge, error)
}

// WalletStore is the narrow wallet envelope interface the verifier needs.
type WalletStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*wallet.Envelope, error)
	UpdatePasskeyCounter(ctx context.Context, userID uuid.UUID, newCounter uint32) error
}

// ChallengeResponse is handed to the client to start an assertion ceremony.
// The challenge value is base64url without padding, the WebAuthn wire form.
type ChallengeResponse struct {
	ChallengeID uuid.UUID `json:"challenge_id"`
	Challenge   string    `json:"challenge"`
	RPID        string    `json:"rp_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// VerifyRequest carries an assertion response. All binary fields are
// base64url without padding.
type VerifyRequest struct {
	ChallengeID       uuid.UUID `json:"challenge_id"`
	CredentialID      string    `json:"credential_id"`
	ClientDataJSON    string    `json:"client_data_json"`
	AuthenticatorData string    `json:"authenticator_data"`
	Signature         string    `json:"signature"`
}

// VerifyResult reports a successful verification.
type VerifyResult struct {
	Verified bool   `json:"verified"`
	Counter  uint32 `json:"counter"`
}

// Service defines the interface for passkey assertion business logic
type Service interface {
	IssueChallenge(ctx context.Context, sessionKey string) (*ChallengeResponse, error)
	VerifyAssertion(ctx context.Context, userID uuid.UUID, sessionKey string, req *VerifyRequest) (*VerifyResult, error)
}

type passkeyService struct {
	challenges ChallengeStore
	wallets    WalletStore
	rpID       string
	origin     string
	ttl        time.Duration
	logger     *zap.Logger
}

// NewService creates a new passkey service. rpID and origin pin the relying
// party; ttl bounds the challenge lifetime.
func NewService(challenges ChallengeStore, wallets WalletStore, rpID, origin string, ttl time.Duration, logger *zap.Logger) Service {
	return &passkeyService{
		challenges: challenges,
		wallets:    wallets,
		rpID:       rpID,
		origin:     origin,
		ttl:        ttl,
		logger:     logger,
	}
}

// IssueChallenge mints a fresh random challenge bound to the caller's session.
func (s *passkeyService) IssueChallenge(ctx context.Context, sessionKey string) (*ChallengeResponse, error) {
	value := make([]byte, passkey.ChallengeSize)
	if _, err := rand.Read(value); err != nil {
		return nil, fmt.Errorf("failed to generate challenge: %w", err)
	}

	c := &passkey.Challenge{
		ID:         uuid.New(),
		SessionKey: sessionKey,
		Value:      value,
		ExpiresAt:  time.Now().Add(s.ttl),
		CreatedAt:  time.Now(),
	}
	if err := s.challenges.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save challenge: %w", err)
	}

	return &ChallengeResponse{
		ChallengeID: c.ID,
		Challenge:   base64.RawURLEncoding.EncodeToString(value),
		RPID:        s.rpID,
		ExpiresAt:   c.ExpiresAt,
	}, nil
}

// VerifyAssertion consumes the challenge and checks the assertion against
// the passkey credential stored on the user's wallet envelope.
//
// The verification process:
//  1. Spends the challenge; a spent or expired one fails closed
//  2. Loads the envelope and matches the credential id
//  3. Verifies client data, relying-party binding and signature
//  4. Advances the signature counter; a regression is rejected as replay
//
// Authenticators that do not implement counters report zero; the counter
// step is skipped for those.
func (s *passkeyService) VerifyAssertion(
	ctx context.Context,
	userID uuid.UUID,
	sessionKey string,
	req *VerifyRequest,
) (*VerifyResult, error) {
	challenge, err := s.challenges.Consume(ctx, req.ChallengeID, sessionKey)
	if err != nil {
		switch {
		case errors.Is(err, passkeystore.ErrChallengeNotFound):
			return nil, apperrors.ValidationError(err, "unknown challenge")
		case errors.Is(err, passkeystore.ErrChallengeSpent):
			return nil, apperrors.ValidationError(ErrChallengeUnusable, "challenge expired or already used")
		default:
			return nil, fmt.Errorf("failed to consume challenge: %w", err)
		}
	}

	env, err := s.wallets.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, walletstore.ErrEnvelopeNotFound) {
			return nil, apperrors.NotFoundError(err, "wallet envelope not found")
		}
		return nil, fmt.Errorf("failed to load wallet envelope: %w", err)
	}
	if !env.HasPasskey() {
		return nil, apperrors.ValidationError(ErrNoPasskey, "wallet has no passkey credential")
	}
	if subtle.ConstantTimeCompare([]byte(env.PasskeyCredentialID), []byte(req.CredentialID)) != 1 {
		return nil, apperrors.ValidationError(ErrUnknownCredential, "unknown credential id")
	}

	assertion, err := decodeAssertion(req)
	if err != nil {
		return nil, apperrors.ValidationError(err, "malformed assertion fields")
	}
	publicKey, err := base64.RawURLEncoding.DecodeString(env.PasskeyPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored credential key: %w", err)
	}

	expectedChallenge := base64.RawURLEncoding.EncodeToString(challenge.Value)
	counter, err := passkey.Verify(assertion, publicKey, expectedChallenge, s.rpID, s.origin)
	if err != nil {
		return nil, apperrors.ValidationError(err, "assertion verification failed")
	}

	if counter > 0 {
		err = s.wallets.UpdatePasskeyCounter(ctx, userID, counter)
		if err != nil {
			if errors.Is(err, walletstore.ErrCounterRegression) {
				return nil, apperrors.ReplaySuspectedError(ErrCounterRegression,
					"signature counter did not advance")
			}
			return nil, fmt.Errorf("failed to advance signature counter: %w", err)
		}
	}

	return &VerifyResult{Verified: true, Counter: counter}, nil
}

func decodeAssertion(req *VerifyRequest) (*passkey.Assertion, error) {
	credentialID, err := base64.RawURLEncoding.DecodeString(req.CredentialID)
	if err != nil {
		return nil, fmt.Errorf("credential_id: %w", err)
	}
	clientDataJSON, err := base64.RawURLEncoding.DecodeString(req.ClientDataJSON)
	if err != nil {
		return nil, fmt.Errorf("client_data_json: %w", err)
	}
	authenticatorData, err := base64.RawURLEncoding.DecodeString(req.AuthenticatorData)
	if err != nil {
		return nil, fmt.Errorf("authenticator_data: %w", err)
	}
	signature, err := base64.RawURLEncoding.DecodeString(req.Signature)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}

	return &passkey.Assertion{
		CredentialID:      credentialID,
		ClientDataJSON:    clientDataJSON,
		AuthenticatorData: authenticatorData,
		Signature:         signature,
	}, nil
}
