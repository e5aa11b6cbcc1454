package contactstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/yukiapp/yuki-server/pkg/contacts"
)

// ContactDao is a data access object that maps directly to the
// 'contacts' table in PostgreSQL.
type ContactDao struct {
	bun.BaseModel `bun:"table:contacts,alias:c"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerID       uuid.UUID `bun:"owner_id,notnull,type:uuid,unique:contacts_owner_contact_key"`
	ContactUserID uuid.UUID `bun:"contact_user_id,notnull,type:uuid,unique:contacts_owner_contact_key"`
	Nickname      *string   `bun:"nickname,type:varchar(64)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

func toContactDao(c *contacts.Contact) *ContactDao {
	dao := &ContactDao{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		ContactUserID: c.ContactUserID,
		CreatedAt:     c.CreatedAt,
	}
	if c.Nickname != "" {
		dao.Nickname = &c.Nickname
	}
	return dao
}
