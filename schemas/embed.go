// Package schemas bundles the JSON Schema documents that incoming documents are
// validated against. Every file is addressed by its identifier: Prefix followed by the
// file path without the ".json" extension.
package schemas

import (
	"embed"
	"io/fs"
	"strings"
)

// Version is the version of the bundled schema set.
const Version = "v0"

// Prefix is the identifier prefix shared by every bundled schema.
const Prefix = BaseURI + Version + "/"

// BaseURI is the host part of every bundled schema identifier.
const BaseURI = "https://schemas.docschema.dev/"

//go:embed *.json */*.json
var files embed.FS

// FS returns the bundled schema files.
func FS() fs.FS {
	return files
}

// List returns the identifiers of all bundled schemas in lexical order.
func List() []string {
	var ids []string
	_ = fs.WalkDir(files, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(name, ".json") {
			return err
		}
		ids = append(ids, Prefix+strings.TrimSuffix(name, ".json"))
		return nil
	})
	return ids
}

// Get returns the raw schema document for an identifier.
func Get(identifier string) ([]byte, bool) {
	name, ok := strings.CutPrefix(identifier, Prefix)
	if !ok {
		return nil, false
	}
	b, err := files.ReadFile(name + ".json")
	if err != nil {
		return nil, false
	}
	return b, true
}
