package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	"github.com/yukiapp/yuki-server/pkg/wallet"
	"github.com/yukiapp/yuki-server/pkg/walletstore"
)

// fakeStore is an in-memory envelope store double.
type fakeStore struct {
	envelopes map[uuid.UUID]*wallet.Envelope
}

func newFakeStore() *fakeStore {
	return &fakeStore{envelopes: make(map[uuid.UUID]*wallet.Envelope)}
}

func (f *fakeStore) Create(_ context.Context, env *wallet.Envelope) error {
	if _, ok := f.envelopes[env.UserID]; ok {
		return walletstore.ErrEnvelopeExists
	}
	f.envelopes[env.UserID] = env
	return nil
}

func (f *fakeStore) Get(_ context.Context, userID uuid.UUID) (*wallet.Envelope, error) {
	env, ok := f.envelopes[userID]
	if !ok {
		return nil, walletstore.ErrEnvelopeNotFound
	}
	return env, nil
}

func validRequest() *CreateEnvelopeRequest {
	return &CreateEnvelopeRequest{
		Address:       "0xABCDEF0123456789ABCDEF0123456789ABCDEF01",
		ChainID:       1,
		CipherPriv:    "Y2lwaGVydGV4dA",
		CipherPrivIV:  "aXY",
		KDFSalt:       "c2FsdA",
		KDFParams:     json.RawMessage(`{"algo":"argon2id"}`),
		SecurityLevel: string(wallet.SecurityPasswordOnly),
	}
}

func TestCreateEnvelope_Success(t *testing.T) {
	svc := NewService(newFakeStore(), 1, zap.NewNop())
	userID := uuid.New()

	env, err := svc.CreateEnvelope(context.Background(), userID, validRequest())
	if err != nil {
		t.Fatalf("CreateEnvelope() failed: %v", err)
	}
	if env.ID == uuid.Nil {
		t.Fatalf("expected server-assigned id")
	}
	if env.Address != "0xabcdef0123456789abcdef0123456789abcdef01" {
		t.Fatalf("address not normalized: %s", env.Address)
	}
	if env.SchemaVersion != wallet.SchemaVersion {
		t.Fatalf("schema version mismatch: %d", env.SchemaVersion)
	}

	got, err := svc.GetEnvelope(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetEnvelope() failed: %v", err)
	}
	if got.CipherPriv != "Y2lwaGVydGV4dA" {
		t.Fatalf("ciphertext not stored verbatim")
	}
}

func TestCreateEnvelope_Rejections(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 1, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*CreateEnvelopeRequest)
		wantCat apperrors.Category
	}{
		{
			name:    "invalid address",
			mutate:  func(r *CreateEnvelopeRequest) { r.Address = "0xZZ" },
			wantCat: apperrors.CategoryValidation,
		},
		{
			name:    "address too short",
			mutate:  func(r *CreateEnvelopeRequest) { r.Address = "0xABCDEF0123456789ABCDEF0123456789ABCDEF0" },
			wantCat: apperrors.CategoryValidation,
		},
		{
			name:    "unsupported chain",
			mutate:  func(r *CreateEnvelopeRequest) { r.ChainID = 5 },
			wantCat: apperrors.CategoryValidation,
		},
		{
			name:    "unknown security level",
			mutate:  func(r *CreateEnvelopeRequest) { r.SecurityLevel = "hardware" },
			wantCat: apperrors.CategoryValidation,
		},
		{
			name:    "missing ciphertext",
			mutate:  func(r *CreateEnvelopeRequest) { r.CipherPriv = "" },
			wantCat: apperrors.CategoryValidation,
		},
		{
			name: "passkey level without passkey material",
			mutate: func(r *CreateEnvelopeRequest) {
				r.SecurityLevel = string(wallet.SecurityPasskeyEnabled)
			},
			wantCat: apperrors.CategoryValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := svc.CreateEnvelope(ctx, uuid.New(), req)
			if !apperrors.Is(err, tt.wantCat) {
				t.Fatalf("expected category %s, got %v", tt.wantCat, err)
			}
		})
	}
}

func TestCreateEnvelope_ConflictOnSecondCreate(t *testing.T) {
	svc := NewService(newFakeStore(), 1, zap.NewNop())
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.CreateEnvelope(ctx, userID, validRequest()); err != nil {
		t.Fatalf("first CreateEnvelope() failed: %v", err)
	}
	_, err := svc.CreateEnvelope(ctx, userID, validRequest())
	if !apperrors.Is(err, apperrors.CategoryConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestCreateEnvelope_PasskeyEnabled(t *testing.T) {
	svc := NewService(newFakeStore(), 1, zap.NewNop())

	req := validRequest()
	req.SecurityLevel = string(wallet.SecurityPasskeyEnabled)
	req.WrappedDEKPassword = "d3JhcA"
	req.WrappedDEKPasswordIV = "aXYx"
	req.WrappedDEKPasskey = "d3JhcDI"
	req.WrappedDEKPasskeyIV = "aXYy"
	req.PasskeyCredentialID = "Y3JlZA"
	req.PasskeyPublicKey = "cHVi"
	req.PasskeyTransports = []string{"internal"}

	env, err := svc.CreateEnvelope(context.Background(), uuid.New(), req)
	if err != nil {
		t.Fatalf("CreateEnvelope() failed: %v", err)
	}
	if !env.HasPasskey() {
		t.Fatalf("expected passkey-enabled envelope")
	}
	if env.SignatureCounter != 0 {
		t.Fatalf("fresh envelope counter should be 0, got %d", env.SignatureCounter)
	}
}

func TestGetEnvelope_NotFound(t *testing.T) {
	svc := NewService(newFakeStore(), 1, zap.NewNop())

	_, err := svc.GetEnvelope(context.Background(), uuid.New())
	if !apperrors.Is(err, apperrors.CategoryNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
