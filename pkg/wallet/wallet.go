// Package wallet defines the wallet envelope domain model.
//
// An envelope is the at-rest encrypted representation of a wallet's private
// key plus the metadata a client needs to unwrap it. The server stores and
// returns ciphertext and key-derivation metadata verbatim; it never receives
// or emits plaintext key material.
package wallet

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// SchemaVersion is the current envelope layout version.
const SchemaVersion = 1

// SecurityLevel describes how the data-encryption key is wrapped.
type SecurityLevel string

const (
	// SecurityPasswordOnly means the DEK is wrapped under a password-derived key only.
	SecurityPasswordOnly SecurityLevel = "password_only"
	// SecurityPasskeyEnabled means a second DEK copy is wrapped for passkey unlock.
	SecurityPasskeyEnabled SecurityLevel = "passkey_enabled"
)

// Valid reports whether the security level is a known value.
func (l SecurityLevel) Valid() bool {
	return l == SecurityPasswordOnly || l == SecurityPasskeyEnabled
}

// Envelope holds the ciphertext and unwrap metadata for one user's wallet.
// Binary fields are base64 strings produced client-side; the server treats
// them as opaque.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"-"`
	Address       string          `json:"address"`
	ChainID       int64           `json:"chain_id"`
	SchemaVersion int             `json:"schema_version"`
	CipherPriv    string          `json:"cipher_priv"`
	CipherPrivIV  string          `json:"cipher_priv_iv"`
	KDFSalt       string          `json:"kdf_salt"`
	KDFParams     json.RawMessage `json:"kdf_params"`
	SecurityLevel SecurityLevel   `json:"security_level"`

	// DEK wrapped under the password-derived key.
	WrappedDEKPassword   string `json:"wrapped_dek_password,omitzero"`
	WrappedDEKPasswordIV string `json:"wrapped_dek_password_iv,omitzero"`

	// Second DEK copy and passkey metadata, present only when
	// security level is passkey_enabled.
	WrappedDEKPasskey   string   `json:"wrapped_dek_passkey,omitzero"`
	WrappedDEKPasskeyIV string   `json:"wrapped_dek_passkey_iv,omitzero"`
	PasskeyCredentialID string   `json:"passkey_credential_id,omitzero"`
	PasskeyPublicKey    string   `json:"passkey_public_key,omitzero"`
	PasskeyTransports   []string `json:"passkey_transports,omitzero"`
	SignatureCounter    uint32   `json:"signature_counter"`

	CreatedAt time.Time `json:"created_at"`
}

// HasPasskey reports whether the envelope carries passkey unlock material.
func (e *Envelope) HasPasskey() bool {
	return e.SecurityLevel == SecurityPasskeyEnabled
}

// ValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
func ValidAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") {
		return false
	}
	return common.IsHexAddress(s)
}

// NormalizeAddress lowercases a hex address for storage and comparison.
func NormalizeAddress(s string) string {
	return strings.ToLower(common.HexToAddress(s).Hex())
}
