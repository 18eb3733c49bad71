// Package schemas holds the embedded JSON Schemas for the YAML files beacon
// reads: the brand profile and the project configuration.
package schemas

import _ "embed"

//go:embed profile.schema.json
var ProfileSchemaJSON string

//go:embed config.schema.json
var ConfigSchemaJSON string
