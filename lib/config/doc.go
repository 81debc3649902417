// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads memshell's configuration file.
//
// Configuration comes from a single file named by either the
// MEMSHELL_CONFIG environment variable (via [Load]) or the --config
// flag (via [LoadFile]). There is no discovery: with neither set,
// memshell runs on [Default]. Files ending in .json or .jsonc are read
// as JSON with comments; everything else is YAML. Both use the same
// field names.
//
//	memory:
//	  initial_size: 512MB
//	  limit: 4GB
//	  reserved: 1MB
//	console:
//	  prompt_suffix: "> "
//	  interactive: auto
//	log:
//	  level: warn
//
// Size fields are strings in memshell's size syntax ("512MB", "1.5G",
// bare bytes). String fields accept ${VAR} and ${VAR:-default}
// expansion after loading.
package config
