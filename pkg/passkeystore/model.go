package passkeystore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/yukiapp/yuki-server/pkg/passkey"
)

// ChallengeDao is a data access object that maps directly to the
// 'passkey_challenges' table in PostgreSQL.
type ChallengeDao struct {
	bun.BaseModel `bun:"table:passkey_challenges,alias:pc"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	SessionKey    string    `bun:"session_key,notnull,type:varchar(128)"`
	Value         []byte    `bun:"value,notnull,type:bytea"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
	Used          bool      `bun:"used,notnull,default:false"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

func toChallengeDao(c *passkey.Challenge) *ChallengeDao {
	return &ChallengeDao{
		ID:         c.ID,
		SessionKey: c.SessionKey,
		Value:      c.Value,
		ExpiresAt:  c.ExpiresAt,
		Used:       c.Used,
		CreatedAt:  c.CreatedAt,
	}
}

func toChallenge(dao *ChallengeDao) *passkey.Challenge {
	return &passkey.Challenge{
		ID:         dao.ID,
		SessionKey: dao.SessionKey,
		Value:      dao.Value,
		ExpiresAt:  dao.ExpiresAt,
		Used:       dao.Used,
		CreatedAt:  dao.CreatedAt,
	}
}
