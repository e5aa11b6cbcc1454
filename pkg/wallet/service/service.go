package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/yukiapp/yuki-server/pkg/app/errors"
	"github.com/yukiapp/yuki-server/pkg/wallet"
	"github.com/yukiapp/yuki-server/pkg/walletstore"
)

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrUnsupportedChain = errors.New("unsupported chain id")
	ErrEnvelopeExists   = errors.New("wallet envelope already exists")
	ErrMissingPasskey   = errors.New("passkey fields required for passkey_enabled envelope")
)

// Store is the narrow data-access interface for the wallet service.
// Defined here to keep the service decoupled from walletstore implementation details.
type Store interface {
	Create(ctx context.Context, env *wallet.Envelope) error
	Get(ctx context.Context, userID uuid.UUID) (*wallet.Envelope, error)
}

// CreateEnvelopeRequest carries the client-encrypted envelope. All binary
// fields are base64; the server never inspects them.
type CreateEnvelopeRequest struct {
	Address       string          `json:"address" validate:"required"`
	ChainID       int64           `json:"chain_id" validate:"required"`
	CipherPriv    string          `json:"cipher_priv" validate:"required"`
	CipherPrivIV  string          `json:"cipher_priv_iv" validate:"required"`
	KDFSalt       string          `json:"kdf_salt" validate:"required"`
	KDFParams     json.RawMessage `json:"kdf_params" validate:"required"`
	SecurityLevel string          `json:"security_level" validate:"required,oneof=password_only passkey_enabled"`

	WrappedDEKPassword   string `json:"wrapped_dek_password,omitzero"`
	WrappedDEKPasswordIV string `json:"wrapped_dek_password_iv,omitzero"`

	WrappedDEKPasskey   string   `json:"wrapped_dek_passkey,omitzero"`
	WrappedDEKPasskeyIV string   `json:"wrapped_dek_passkey_iv,omitzero"`
	PasskeyCredentialID string   `json:"passkey_credential_id,omitzero"`
	PasskeyPublicKey    string   `json:"passkey_public_key,omitzero"`
	PasskeyTransports   []string `json:"passkey_transports,omitzero"`
}

// Service defines the interface for wallet envelope business logic
type Service interface {
	CreateEnvelope(ctx context.Context, userID uuid.UUID, req *CreateEnvelopeRequest) (*wallet.Envelope, error)
	GetEnvelope(ctx context.Context, userID uuid.UUID) (*wallet.Envelope, error)
}

type walletService struct {
	store    Store
	chainID  int64
	logger   *zap.Logger
	validate *validator.Validate
}

// NewService creates a new wallet envelope service. chainID is the single
// supported mainnet id.
func NewService(store Store, chainID int64, logger *zap.Logger) Service {
	return &walletService{
		store:    store,
		chainID:  chainID,
		logger:   logger,
		validate: validator.New(),
	}
}

// CreateEnvelope validates and persists a new envelope for the user.
//
// The creation process:
//  1. Validates required fields
//  2. Checks the address format and supported chain id
//  3. Checks passkey material consistency against the security level
//  4. Persists, relying on the store for create-if-absent atomicity
//
// Fails with Conflict when an envelope already exists for the user.
func (s *walletService) CreateEnvelope(
	ctx context.Context,
	userID uuid.UUID,
	req *CreateEnvelopeRequest,
) (*wallet.Envelope, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.ValidationError(err, "missing or invalid envelope fields")
	}

	if !wallet.ValidAddress(req.Address) {
		return nil, apperrors.ValidationError(ErrInvalidAddress, "invalid wallet address")
	}
	if req.ChainID != s.chainID {
		return nil, apperrors.ValidationError(ErrUnsupportedChain,
			fmt.Sprintf("unsupported chain id %d", req.ChainID))
	}

	level := wallet.SecurityLevel(req.SecurityLevel)
	if level == wallet.SecurityPasskeyEnabled {
		if req.WrappedDEKPasskey == "" || req.WrappedDEKPasskeyIV == "" ||
			req.PasskeyCredentialID == "" || req.PasskeyPublicKey == "" {
			return nil, apperrors.ValidationError(ErrMissingPasskey,
				"passkey_enabled envelope requires wrapped_dek_passkey, its iv, credential id and public key")
		}
	}

	env := &wallet.Envelope{
		ID:                   uuid.New(),
		UserID:               userID,
		Address:              wallet.NormalizeAddress(req.Address),
		ChainID:              req.ChainID,
		SchemaVersion:        wallet.SchemaVersion,
		CipherPriv:           req.CipherPriv,
		CipherPrivIV:         req.CipherPrivIV,
		KDFSalt:              req.KDFSalt,
		KDFParams:            req.KDFParams,
		SecurityLevel:        level,
		WrappedDEKPassword:   req.WrappedDEKPassword,
		WrappedDEKPasswordIV: req.WrappedDEKPasswordIV,
		WrappedDEKPasskey:    req.WrappedDEKPasskey,
		WrappedDEKPasskeyIV:  req.WrappedDEKPasskeyIV,
		PasskeyCredentialID:  req.PasskeyCredentialID,
		PasskeyPublicKey:     req.PasskeyPublicKey,
		PasskeyTransports:    req.PasskeyTransports,
	}

	if err := s.store.Create(ctx, env); err != nil {
		if errors.Is(err, walletstore.ErrEnvelopeExists) {
			return nil, apperrors.ConflictError(ErrEnvelopeExists, "wallet envelope already exists")
		}
		return nil, fmt.Errorf("failed to save wallet envelope: %w", err)
	}

	return env, nil
}

// GetEnvelope returns the stored envelope verbatim.
func (s *walletService) GetEnvelope(ctx context.Context, userID uuid.UUID) (*wallet.Envelope, error) {
	env, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, walletstore.ErrEnvelopeNotFound) {
			return nil, apperrors.NotFoundError(err, "wallet envelope not found")
		}
		return nil, fmt.Errorf("failed to load wallet envelope: %w", err)
	}
	return env, nil
}
