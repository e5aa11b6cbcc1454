package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	"github.com/yukiapp/yuki-server/pkg/passkey"
	"github.com/yukiapp/yuki-server/pkg/passkeystore"
	"github.com/yukiapp/yuki-server/pkg/wallet"
	"github.com/yukiapp/yuki-server/pkg/walletstore"
)

const (
	testRPID   = "yuki.app"
	testOrigin = "https://yuki.app"
)

// fakeChallengeStore mimics single-use consumption semantics.
type fakeChallengeStore struct {
	challenges map[uuid.UUID]*passkey.Challenge
}

func newFakeChallengeStore() *fakeChallengeStore {
	return &fakeChallengeStore{challenges: make(map[uuid.UUID]*passkey.Challenge)}
}

func (f *fakeChallengeStore) Create(_ context.Context, c *passkey.Challenge) error {
	f.challenges[c.ID] = c
	return nil
}

func (f *fakeChallengeStore) Consume(_ context.Context, id uuid.UUID, sessionKey string) (*passkey.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok || c.SessionKey != sessionKey {
		return nil, passkeystore.ErrChallengeNotFound
	}
	if c.Used || c.Expired(time.Now()) {
		return nil, passkeystore.ErrChallengeSpent
	}
	c.Used = true
	return c, nil
}

// fakeWalletStore holds one envelope and enforces counter monotonicity.
type fakeWalletStore struct {
	envelope *wallet.Envelope
}

func (f *fakeWalletStore) Get(_ context.Context, userID uuid.UUID) (*wallet.Envelope, error) {
	if f.envelope == nil || f.envelope.UserID != userID {
		return nil, walletstore.ErrEnvelopeNotFound
	}
	return f.envelope, nil
}

func (f *fakeWalletStore) UpdatePasskeyCounter(_ context.Context, userID uuid.UUID, newCounter uint32) error {
	if f.envelope == nil || f.envelope.UserID != userID {
		return walletstore.ErrEnvelopeNotFound
	}
	if newCounter <= f.envelope.SignatureCounter {
		return walletstore.ErrCounterRegression
	}
	f.envelope.SignatureCounter = newCounter
	return nil
}

type testCredential struct {
	priv         *ecdsa.PrivateKey
	credentialID string
	publicKey    string
}

func newTestCredential(t *testing.T) *testCredential {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	x := priv.PublicKey.X.FillBytes(make([]byte, 32))
	y := priv.PublicKey.Y.FillBytes(make([]byte, 32))
	coseKey, err := cbor.Marshal(map[int]any{1: 2, 3: -7, -1: 1, -2: x, -3: y})
	if err != nil {
		t.Fatalf("failed to marshal cose key: %v", err)
	}

	return &testCredential{
		priv:         priv,
		credentialID: base64.RawURLEncoding.EncodeToString([]byte("cred-1")),
		publicKey:    base64.RawURLEncoding.EncodeToString(coseKey),
	}
}

func passkeyEnvelope(userID uuid.UUID, cred *testCredential, counter uint32) *wallet.Envelope {
	return &wallet.Envelope{
		ID:                  uuid.New(),
		UserID:              userID,
		Address:             "0x1111111111111111111111111111111111111111",
		ChainID:             1,
		SchemaVersion:       wallet.SchemaVersion,
		SecurityLevel:       wallet.SecurityPasskeyEnabled,
		PasskeyCredentialID: cred.credentialID,
		PasskeyPublicKey:    cred.publicKey,
		SignatureCounter:    counter,
	}
}

// signAssertion builds a verify request answering the issued challenge.
func signAssertion(t *testing.T, cred *testCredential, resp *ChallengeResponse, counter uint32) *VerifyRequest {
	t.Helper()

	clientData, err := json.Marshal(map[string]string{
		"type":      "webauthn.get",
		"challenge": resp.Challenge,
		"origin":    testOrigin,
	})
	if err != nil {
		t.Fatalf("failed to marshal client data: %v", err)
	}

	rpIDHash := sha256.Sum256([]byte(testRPID))
	authData := make([]byte, 37)
	copy(authData, rpIDHash[:])
	authData[32] = 0x01
	binary.BigEndian.PutUint32(authData[33:37], counter)

	clientDataHash := sha256.Sum256(clientData)
	message := append(append([]byte{}, authData...), clientDataHash[:]...)
	digest := sha256.Sum256(message)
	sig, err := ecdsa.SignASN1(rand.Reader, cred.priv, digest[:])
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	return &VerifyRequest{
		ChallengeID:       resp.ChallengeID,
		CredentialID:      cred.credentialID,
		ClientDataJSON:    base64.RawURLEncoding.EncodeToString(clientData),
		AuthenticatorData: base64.RawURLEncoding.EncodeToString(authData),
		Signature:         base64.RawURLEncoding.EncodeToString(sig),
	}
}

func newTestService(challenges ChallengeStore, wallets WalletStore) Service {
	return NewService(challenges, wallets, testRPID, testOrigin, 5*time.Minute, zap.NewNop())
}

func TestVerifyAssertion_FullCeremony(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cred := newTestCredential(t)

	challenges := newFakeChallengeStore()
	wallets := &fakeWalletStore{envelope: passkeyEnvelope(userID, cred, 3)}
	svc := newTestService(challenges, wallets)

	resp, err := svc.IssueChallenge(ctx, "session-1")
	if err != nil {
		t.Fatalf("IssueChallenge() failed: %v", err)
	}
	if resp.RPID != testRPID {
		t.Fatalf("rp id mismatch: %s", resp.RPID)
	}

	result, err := svc.VerifyAssertion(ctx, userID, "session-1", signAssertion(t, cred, resp, 4))
	if err != nil {
		t.Fatalf("VerifyAssertion() failed: %v", err)
	}
	if !result.Verified || result.Counter != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if wallets.envelope.SignatureCounter != 4 {
		t.Fatalf("stored counter not advanced: %d", wallets.envelope.SignatureCounter)
	}
}

func TestVerifyAssertion_ChallengeSingleUse(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cred := newTestCredential(t)

	challenges := newFakeChallengeStore()
	wallets := &fakeWalletStore{envelope: passkeyEnvelope(userID, cred, 0)}
	svc := newTestService(challenges, wallets)

	resp, err := svc.IssueChallenge(ctx, "session-1")
	if err != nil {
		t.Fatalf("IssueChallenge() failed: %v", err)
	}

	req := signAssertion(t, cred, resp, 1)
	if _, err := svc.VerifyAssertion(ctx, userID, "session-1", req); err != nil {
		t.Fatalf("first VerifyAssertion() failed: %v", err)
	}

	// Replaying the same assertion must fail on the spent challenge.
	if _, err := svc.VerifyAssertion(ctx, userID, "session-1", req); !apperrors.Is(err, apperrors.CategoryValidation) {
		t.Fatalf("expected Validation for spent challenge, got %v", err)
	}
}

func TestVerifyAssertion_CounterRegressionIsReplay(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cred := newTestCredential(t)

	challenges := newFakeChallengeStore()
	wallets := &fakeWalletStore{envelope: passkeyEnvelope(userID, cred, 10)}
	svc := newTestService(challenges, wallets)

	resp, err := svc.IssueChallenge(ctx, "session-1")
	if err != nil {
		t.Fatalf("IssueChallenge() failed: %v", err)
	}

	// Valid signature but a counter the server has already seen.
	_, err = svc.VerifyAssertion(ctx, userID, "session-1", signAssertion(t, cred, resp, 10))
	if !apperrors.Is(err, apperrors.CategoryReplaySuspected) {
		t.Fatalf("expected ReplaySuspected, got %v", err)
	}
	if wallets.envelope.SignatureCounter != 10 {
		t.Fatalf("counter must not change on rejection: %d", wallets.envelope.SignatureCounter)
	}
}

func TestVerifyAssertion_ZeroCounterSkipsAdvance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cred := newTestCredential(t)

	challenges := newFakeChallengeStore()
	wallets := &fakeWalletStore{envelope: passkeyEnvelope(userID, cred, 0)}
	svc := newTestService(challenges, wallets)

	resp, err := svc.IssueChallenge(ctx, "session-1")
	if err != nil {
		t.Fatalf("IssueChallenge() failed: %v", err)
	}

	// Authenticators without counters always report zero; that is accepted.
	result, err := svc.VerifyAssertion(ctx, userID, "session-1", signAssertion(t, cred, resp, 0))
	if err != nil {
		t.Fatalf("VerifyAssertion() failed: %v", err)
	}
	if result.Counter != 0 || wallets.envelope.SignatureCounter != 0 {
		t.Fatalf("unexpected counters: result=%d stored=%d", result.Counter, wallets.envelope.SignatureCounter)
	}
}

func TestVerifyAssertion_Rejections(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cred := newTestCredential(t)

	challenges := newFakeChallengeStore()
	wallets := &fakeWalletStore{envelope: passkeyEnvelope(userID, cred, 0)}
	svc := newTestService(challenges, wallets)

	// Unknown challenge id.
	_, err := svc.VerifyAssertion(ctx, userID, "session-1", &VerifyRequest{ChallengeID: uuid.New()})
	if !apperrors.Is(err, apperrors.CategoryValidation) {
		t.Fatalf("expected Validation for unknown challenge, got %v", err)
	}

	// Wrong session cannot spend the challenge.
	resp, err := svc.IssueChallenge(ctx, "session-1")
	if err != nil {
		t.Fatalf("IssueChallenge() failed: %v", err)
	}
	_, err = svc.VerifyAssertion(ctx, userID, "session-2", signAssertion(t, cred, resp, 1))
	if !apperrors.Is(err, apperrors.CategoryValidation) {
		t.Fatalf("expected Validation for foreign session, got %v", err)
	}

	// Wrong credential id.
	resp, err = svc.IssueChallenge(ctx, "session-1")
	if err != nil {
		t.Fatalf("IssueChallenge() failed: %v", err)
	}
	req := signAssertion(t, cred, resp, 1)
	req.CredentialID = base64.RawURLEncoding.EncodeToString([]byte("other-cred"))
	_, err = svc.VerifyAssertion(ctx, userID, "session-1", req)
	if !apperrors.Is(err, apperrors.CategoryValidation) {
		t.Fatalf("expected Validation for unknown credential, got %v", err)
	}

	// No envelope for the user.
	resp, err = svc.IssueChallenge(ctx, "session-1")
	if err != nil {
		t.Fatalf("IssueChallenge() failed: %v", err)
	}
	_, err = svc.VerifyAssertion(ctx, uuid.New(), "session-1", signAssertion(t, cred, resp, 1))
	if !apperrors.Is(err, apperrors.CategoryNotFound) {
		t.Fatalf("expected NotFound for missing envelope, got %v", err)
	}

	// Password-only envelope has no passkey to verify against.
	resp, err = svc.IssueChallenge(ctx, "session-1")
	if err != nil {
		t.Fatalf("IssueChallenge() failed: %v", err)
	}
	wallets.envelope.SecurityLevel = wallet.SecurityPasswordOnly
	_, err = svc.VerifyAssertion(ctx, userID, "session-1", signAssertion(t, cred, resp, 1))
	if !apperrors.Is(err, apperrors.CategoryValidation) {
		t.Fatalf("expected Validation for password-only envelope, got %v", err)
	}
}
