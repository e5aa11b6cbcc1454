package userstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/yukiapp/yuki-server/pkg/user"
)

// UserDao is a data access object that maps directly to the 'users' table in PostgreSQL.
type UserDao struct {
	bun.BaseModel  `bun:"table:users,alias:u"`
	ID             uuid.UUID `bun:"id,pk,type:uuid"`
	AuthProviderID string    `bun:"auth_provider_id,unique,notnull,type:varchar(255)"`
	WalletAddress  *string   `bun:"wallet_address,unique,nullzero,type:varchar(42)"`
	Username       *string   `bun:"username,nullzero,type:varchar(20)"`
	DisplayName    *string   `bun:"display_name,type:varchar(100)"`
	Bio            *string   `bun:"bio,type:varchar(500)"`
	AvatarURL      *string   `bun:"avatar_url,type:text"`
	BannerURL      *string   `bun:"banner_url,type:text"`
	Private        bool      `bun:"private,notnull,default:false"`
	CreatedAt      time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// HandleRedirectDao maps old handles to the user that renamed away from them.
// The old handle is stored lowercase; the current handle is read off the user row.
type HandleRedirectDao struct {
	bun.BaseModel `bun:"table:handle_redirects,alias:hr"`
	OldHandle     string    `bun:"old_handle,pk,type:varchar(20)"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// toUserDao converts a user.User to UserDao.
func toUserDao(usr *user.User) *UserDao {
	dao := &UserDao{
		ID:             usr.ID,
		AuthProviderID: usr.AuthProviderID,
		Private:        usr.Private,
		CreatedAt:      usr.CreatedAt,
	}

	if usr.WalletAddress != "" {
		dao.WalletAddress = &usr.WalletAddress
	}
	if usr.Username != "" {
		dao.Username = &usr.Username
	}
	if usr.DisplayName != "" {
		dao.DisplayName = &usr.DisplayName
	}
	if usr.Bio != "" {
		dao.Bio = &usr.Bio
	}
	if usr.AvatarURL != "" {
		dao.AvatarURL = &usr.AvatarURL
	}
	if usr.BannerURL != "" {
		dao.BannerURL = &usr.BannerURL
	}

	return dao
}

// toUser converts a UserDao to user.User.
func toUser(dao *UserDao) *user.User {
	usr := &user.User{
		ID:             dao.ID,
		AuthProviderID: dao.AuthProviderID,
		Private:        dao.Private,
		CreatedAt:      dao.CreatedAt,
	}

	if dao.WalletAddress != nil {
		usr.WalletAddress = *dao.WalletAddress
	}
	if dao.Username != nil {
		usr.Username = *dao.Username
	}
	if dao.DisplayName != nil {
		usr.DisplayName = *dao.DisplayName
	}
	if dao.Bio != nil {
		usr.Bio = *dao.Bio
	}
	if dao.AvatarURL != nil {
		usr.AvatarURL = *dao.AvatarURL
	}
	if dao.BannerURL != nil {
		usr.BannerURL = *dao.BannerURL
	}

	return usr
}
