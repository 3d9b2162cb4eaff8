// Package chatweb embeds the browser chat page.
package chatweb

import "embed"

// FS holds index.html and its assets at the root.
//
//go:embed index.html app.js style.css
var FS embed.FS
