// Package schemas embeds the JSON Schemas shipped with the leaderboard.
package schemas

import _ "embed"

// ResultSchemaJSON describes one flat evaluation result record.
//
//go:embed result.schema.json
var ResultSchemaJSON string

// ConfigSchemaJSON describes the .leaderboard.yaml project file.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
