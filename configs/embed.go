// Package configs embeds the starter files written by `synmap init`.
//
// Templates are embedded at build time, so every binary carries them.
//   - synmap.example.yaml becomes .synmap.yaml
//   - places.example.txt becomes synonyms/places.txt, the rule file the
//     example config points at
package configs

import _ "embed"

// ProjectConfigTemplate is the starter .synmap.yaml.
//
//go:embed synmap.example.yaml
var ProjectConfigTemplate string

// PlacesRulesTemplate is a sample rule file referenced by
// ProjectConfigTemplate.
//
//go:embed places.example.txt
var PlacesRulesTemplate string
