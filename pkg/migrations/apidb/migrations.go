// Package apidb holds all the migrations for the API database
package apidb

import "github.com/uptrace/bun/migrate"

// Migrations is the collection every migration file registers into via init.
var Migrations = migrate.NewMigrations()
