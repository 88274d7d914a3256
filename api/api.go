// Package api embeds the OpenAPI contract of the REST backend.
package api

import _ "embed"

//go:embed backend.yml
var BackendSpec []byte
