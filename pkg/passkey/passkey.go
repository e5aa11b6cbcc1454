// Package passkey implements WebAuthn assertion verification for passkey
// protected wallets.
//
// Only the assertion (authentication) ceremony is handled server side;
// credential registration happens on the client when the wallet envelope is
// created. Verification covers client data checks, relying-party binding,
// user-presence and the signature over authenticatorData plus the client
// data hash. Supported credential algorithms are ES256 (COSE -7) and
// Ed25519 (COSE -8).
package passkey

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// ChallengeSize is the number of random bytes in an issued challenge.
const ChallengeSize = 32

var (
	ErrBadClientData     = errors.New("malformed client data")
	ErrChallengeMismatch = errors.New("challenge mismatch")
	ErrOriginMismatch    = errors.New("origin mismatch")
	ErrRPIDMismatch      = errors.New("relying party id mismatch")
	ErrUserNotPresent    = errors.New("user presence flag not set")
	ErrBadSignature      = errors.New("signature verification failed")
	ErrUnsupportedKey    = errors.New("unsupported credential key")
)

// Challenge is a single-use random value bound to a session. It is spent
// either by successful verification or by expiry.
type Challenge struct {
	ID         uuid.UUID
	SessionKey string
	Value      []byte
	ExpiresAt  time.Time
	Used       bool
	CreatedAt  time.Time
}

// Expired reports whether the challenge is past its TTL at the given time.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Assertion carries the raw WebAuthn assertion response fields, decoded
// from their base64url transport form.
type Assertion struct {
	CredentialID      []byte
	ClientDataJSON    []byte
	AuthenticatorData []byte
	Signature         []byte
}

// clientData is the subset of the WebAuthn client data we check.
type clientData struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Origin    string `json:"origin"`
}

// coseKey is a COSE_Key map with integer labels.
type coseKey struct {
	KeyType   int    `cbor:"1,keyasint"`
	Algorithm int    `cbor:"3,keyasint"`
	Curve     int    `cbor:"-1,keyasint"`
	X         []byte `cbor:"-2,keyasint"`
	Y         []byte `cbor:"-3,keyasint"`
}

const (
	coseKeyTypeOKP   = 1
	coseKeyTypeEC2   = 2
	coseAlgES256     = -7
	coseAlgEdDSA     = -8
	coseCurveP256    = 1
	coseCurveEd25519 = 6

	flagUserPresent = 0x01
)

// Verify checks the assertion against the expected challenge, relying
// party and origin, and the credential public key in COSE form. On success
// it returns the authenticator's signature counter; the caller enforces
// counter monotonicity.
func Verify(a *Assertion, publicKeyCOSE []byte, expectedChallenge, rpID, origin string) (uint32, error) {
	var cd clientData
	if err := json.Unmarshal(a.ClientDataJSON, &cd); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadClientData, err)
	}
	if cd.Type != "webauthn.get" {
		return 0, fmt.Errorf("%w: unexpected type %q", ErrBadClientData, cd.Type)
	}
	if cd.Challenge != expectedChallenge {
		return 0, ErrChallengeMismatch
	}
	if cd.Origin != origin {
		return 0, ErrOriginMismatch
	}

	// authenticatorData: rpIdHash(32) | flags(1) | signCount(4)
	if len(a.AuthenticatorData) < 37 {
		return 0, fmt.Errorf("%w: authenticator data too short", ErrBadClientData)
	}
	rpIDHash := sha256.Sum256([]byte(rpID))
	if !bytes.Equal(a.AuthenticatorData[:32], rpIDHash[:]) {
		return 0, ErrRPIDMismatch
	}
	flags := a.AuthenticatorData[32]
	if flags&flagUserPresent == 0 {
		return 0, ErrUserNotPresent
	}
	counter := binary.BigEndian.Uint32(a.AuthenticatorData[33:37])

	clientDataHash := sha256.Sum256(a.ClientDataJSON)
	signed := append(append([]byte{}, a.AuthenticatorData...), clientDataHash[:]...)

	if err := verifySignature(publicKeyCOSE, signed, a.Signature); err != nil {
		return 0, err
	}
	return counter, nil
}

func verifySignature(publicKeyCOSE, message, signature []byte) error {
	var key coseKey
	if err := cbor.Unmarshal(publicKeyCOSE, &key); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedKey, err)
	}

	switch {
	case key.KeyType == coseKeyTypeEC2 && key.Algorithm == coseAlgES256 && key.Curve == coseCurveP256:
		x := new(big.Int).SetBytes(key.X)
		y := new(big.Int).SetBytes(key.Y)
		if !elliptic.P256().IsOnCurve(x, y) {
			return fmt.Errorf("%w: point not on P-256", ErrUnsupportedKey)
		}
		pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
		digest := sha256.Sum256(message)
		if !ecdsa.VerifyASN1(pub, digest[:], signature) {
			return ErrBadSignature
		}
		return nil

	case key.KeyType == coseKeyTypeOKP && key.Algorithm == coseAlgEdDSA && key.Curve == coseCurveEd25519:
		if len(key.X) != ed25519.PublicKeySize {
			return fmt.Errorf("%w: bad ed25519 key length", ErrUnsupportedKey)
		}
		if !ed25519.Verify(ed25519.PublicKey(key.X), message, signature) {
			return ErrBadSignature
		}
		return nil

	default:
		return fmt.Errorf("%w: kty=%d alg=%d crv=%d", ErrUnsupportedKey, key.KeyType, key.Algorithm, key.Curve)
	}
}
