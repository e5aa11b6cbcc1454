package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/yukiapp/yuki-server/pkg/pgutil/migrations"
	"github.com/yukiapp/yuki-server/pkg/walletstore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating wallet_envelopes table...")
		if err := mghelper.CreateSchema(ctx, db, &walletstore.EnvelopeDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &walletstore.EnvelopeDao{}, "address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping wallet_envelopes table...")
		return mghelper.DropTables(ctx, db, &walletstore.EnvelopeDao{})
	})
}
