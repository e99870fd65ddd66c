// Package exclusions provides the embedded curated exclusion list.
package exclusions

import "embed"

// FS contains the embedded exclusion list data.
//
//go:embed impossible_tasks.toml
var FS embed.FS

// ListPath is the path of the curated list within FS.
const ListPath = "impossible_tasks.toml"
