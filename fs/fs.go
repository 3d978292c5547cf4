// Package appfs exposes embedded assets consumed at runtime.
package appfs

import "embed"

//go:embed migrations/*.sql
var FS embed.FS
