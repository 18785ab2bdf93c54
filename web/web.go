// Package web embeds the gateway's HTML templates.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
