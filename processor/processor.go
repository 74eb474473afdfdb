// Package processor extracts translatable text from scripts and data
// documents and writes translations back.
//
// Scripts (JavaScript, TypeScript) yield units identified by byte offsets;
// see ScriptProcessor. Data documents (JSON, YAML) yield entries identified
// by their flattened key path; see DocumentProcessor. Both satisfy
// tlunit.ContentProcessor so a Localizer can drive them the same way.
//
// Nothing in this package logs or does I/O beyond what the caller hands in.
package processor

import "errors"

var errInvalidParsed = errors.New("invalid parsed content")
