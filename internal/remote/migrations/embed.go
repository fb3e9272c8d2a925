// Package migrations embeds the remote event-table provisioning migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
