// Package web embeds the HTML templates and static assets so the server is a
// single self-contained binary.
package web

import "embed"

//go:embed templates static
var FS embed.FS
