// Package migrations содержит SQL-миграции схемы KidTales,
// встраиваемые в бинарник сервера.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
