// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldEvent     = "event"

	// Files
	FieldPath   = "path"
	FieldDigest = "digest"

	// Structured config
	FieldField       = "field"
	FieldFileVersion = "file_version"
	FieldCodeVersion = "code_version"
	FieldToVersion   = "to_version"

	// Markup
	FieldTag    = "tag"
	FieldOffset = "offset"
	FieldSource = "source"
)
