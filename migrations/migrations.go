// Package migrations embeds the goose SQL migrations for the autopost
// schema (posts, job_logs, app_settings). Files are named
// YYYYMMDDHHMMSS_description.sql and applied in order at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
