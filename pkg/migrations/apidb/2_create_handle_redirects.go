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
		log.Println("creating handle_redirects table...")
		if err := mghelper.CreateSchema(ctx, db, &userstore.HandleRedirectDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &userstore.HandleRedirectDao{}, "user_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping handle_redirects table...")
		return mghelper.DropTables(ctx, db, &userstore.HandleRedirectDao{})
	})
}
