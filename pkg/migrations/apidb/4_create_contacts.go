package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/yukiapp/yuki-server/pkg/pgutil/migrations"
	"github.com/yukiapp/yuki-server/pkg/contactstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating contacts table...")
		if err := mghelper.CreateSchema(ctx, db, &contactstore.ContactDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &contactstore.ContactDao{}, "owner_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping contacts table...")
		return mghelper.DropTables(ctx, db, &contactstore.ContactDao{})
	})
}
