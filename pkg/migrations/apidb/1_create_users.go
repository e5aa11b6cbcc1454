package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/yukiapp/yuki-server/pkg/pgutil/migrations"
	"github.com/yukiapp/yuki-server/pkg/userstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating users table...")
		if err := mghelper.CreateSchema(ctx, db, &userstore.UserDao{}); err != nil {
			return err
		}
		// Handles are unique ignoring case; a plain column index cannot
		// express that.
		return mghelper.CreateUniqueExpressionIndex(ctx, db,
			"users", "idx_users_lower_username", "lower(username)")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping users table...")
		return mghelper.DropTables(ctx, db, &userstore.UserDao{})
	})
}
