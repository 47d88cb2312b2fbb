package harumemo

import _ "embed"

// Version is the release of the library and the harumemo binary.
//
//go:embed VERSION
var Version string
