package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/yukiapp/yuki-server/pkg/passkeystore"
	mghelper "github.com/yukiapp/yuki-server/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating passkey_challenges table...")
		if err := mghelper.CreateSchema(ctx, db, &passkeystore.ChallengeDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &passkeystore.ChallengeDao{}, "session_key", "expires_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping passkey_challenges table...")
		return mghelper.DropTables(ctx, db, &passkeystore.ChallengeDao{})
	})
}
