// Package migrations embeds the ordered goose migrations of the local store.
//
// Each file adds one schema version. Collections are plain tables of
// (seq, id, doc) and their secondary indexes must be named
// <collection>_<field>; the store discovers both from sqlite_master.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
