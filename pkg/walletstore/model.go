package walletstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/yukiapp/yuki-server/pkg/wallet"
)

// EnvelopeDao is a data access object that maps directly to the
// 'wallet_envelopes' table in PostgreSQL.
type EnvelopeDao struct {
	bun.BaseModel `bun:"table:wallet_envelopes,alias:we"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	UserID        uuid.UUID `bun:"user_id,unique,notnull,type:uuid"`
	Address       string    `bun:"address,notnull,type:varchar(42)"`
	ChainID       int64     `bun:"chain_id,notnull"`
	SchemaVersion int       `bun:"schema_version,notnull"`
	CipherPriv    string    `bun:"cipher_priv,notnull,type:text"`
	CipherPrivIV  string    `bun:"cipher_priv_iv,notnull,type:varchar(64)"`
	KDFSalt       string    `bun:"kdf_salt,notnull,type:varchar(128)"`
	KDFParams     []byte    `bun:"kdf_params,notnull,type:jsonb"`
	SecurityLevel string    `bun:"security_level,notnull,type:varchar(32)"`

	WrappedDEKPassword   *string `bun:"wrapped_dek_password,type:text"`
	WrappedDEKPasswordIV *string `bun:"wrapped_dek_password_iv,type:varchar(64)"`

	WrappedDEKPasskey   *string  `bun:"wrapped_dek_passkey,type:text"`
	WrappedDEKPasskeyIV *string  `bun:"wrapped_dek_passkey_iv,type:varchar(64)"`
	PasskeyCredentialID *string  `bun:"passkey_credential_id,type:varchar(512)"`
	PasskeyPublicKey    *string  `bun:"passkey_public_key,type:text"`
	PasskeyTransports   []string `bun:"passkey_transports,array"`
	SignatureCounter    uint32   `bun:"signature_counter,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// toEnvelopeDao converts a wallet.Envelope to EnvelopeDao.
func toEnvelopeDao(env *wallet.Envelope) *EnvelopeDao {
	dao := &EnvelopeDao{
		ID:               env.ID,
		UserID:           env.UserID,
		Address:          env.Address,
		ChainID:          env.ChainID,
		SchemaVersion:    env.SchemaVersion,
		CipherPriv:       env.CipherPriv,
		CipherPrivIV:     env.CipherPrivIV,
		KDFSalt:          env.KDFSalt,
		KDFParams:        []byte(env.KDFParams),
		SecurityLevel:    string(env.SecurityLevel),
		SignatureCounter: env.SignatureCounter,
		CreatedAt:        env.CreatedAt,
	}

	if env.WrappedDEKPassword != "" {
		dao.WrappedDEKPassword = &env.WrappedDEKPassword
	}
	if env.WrappedDEKPasswordIV != "" {
		dao.WrappedDEKPasswordIV = &env.WrappedDEKPasswordIV
	}
	if env.WrappedDEKPasskey != "" {
		dao.WrappedDEKPasskey = &env.WrappedDEKPasskey
	}
	if env.WrappedDEKPasskeyIV != "" {
		dao.WrappedDEKPasskeyIV = &env.WrappedDEKPasskeyIV
	}
	if env.PasskeyCredentialID != "" {
		dao.PasskeyCredentialID = &env.PasskeyCredentialID
	}
	if env.PasskeyPublicKey != "" {
		dao.PasskeyPublicKey = &env.PasskeyPublicKey
	}
	if len(env.PasskeyTransports) > 0 {
		dao.PasskeyTransports = env.PasskeyTransports
	}

	return dao
}

// toEnvelope converts an EnvelopeDao to wallet.Envelope.
func toEnvelope(dao *EnvelopeDao) *wallet.Envelope {
	env := &wallet.Envelope{
		ID:               dao.ID,
		UserID:           dao.UserID,
		Address:          dao.Address,
		ChainID:          dao.ChainID,
		SchemaVersion:    dao.SchemaVersion,
		CipherPriv:       dao.CipherPriv,
		CipherPrivIV:     dao.CipherPrivIV,
		KDFSalt:          dao.KDFSalt,
		KDFParams:        json.RawMessage(dao.KDFParams),
		SecurityLevel:    wallet.SecurityLevel(dao.SecurityLevel),
		SignatureCounter: dao.SignatureCounter,
		CreatedAt:        dao.CreatedAt,
	}

	if dao.WrappedDEKPassword != nil {
		env.WrappedDEKPassword = *dao.WrappedDEKPassword
	}
	if dao.WrappedDEKPasswordIV != nil {
		env.WrappedDEKPasswordIV = *dao.WrappedDEKPasswordIV
	}
	if dao.WrappedDEKPasskey != nil {
		env.WrappedDEKPasskey = *dao.WrappedDEKPasskey
	}
	if dao.WrappedDEKPasskeyIV != nil {
		env.WrappedDEKPasskeyIV = *dao.WrappedDEKPasskeyIV
	}
	if dao.PasskeyCredentialID != nil {
		env.PasskeyCredentialID = *dao.PasskeyCredentialID
	}
	if dao.PasskeyPublicKey != nil {
		env.PasskeyPublicKey = *dao.PasskeyPublicKey
	}
	if len(dao.PasskeyTransports) > 0 {
		env.PasskeyTransports = dao.PasskeyTransports
	}

	return env
}
