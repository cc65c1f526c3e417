package jsonschema

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	jsv "github.com/santhosh-tekuri/jsonschema/v6"
)

// FSLoader resolves schema identifiers sharing Prefix to ".json" files in FS.
// It implements the URL loader interface of the tree evaluator, so schemas
// are never fetched over the network.
type FSLoader struct {
	FS     fs.FS
	Prefix string
}

// Load implements jsonschema.URLLoader.
func (l FSLoader) Load(url string) (any, error) {
	f, err := l.open(url)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := jsv.UnmarshalJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, url, err)
	}
	return doc, nil
}

// Identifiers lists the identifiers of every schema file in FS.
func (l FSLoader) Identifiers() ([]string, error) {
	var ids []string
	err := fs.WalkDir(l.FS, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(name, ".json") {
			return nil
		}
		ids = append(ids, l.Prefix+strings.TrimSuffix(name, ".json"))
		return nil
	})
	return ids, err
}

// ReadFile returns the raw schema document for an identifier.
func (l FSLoader) ReadFile(url string) ([]byte, error) {
	name, err := l.name(url)
	if err != nil {
		return nil, err
	}
	b, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownSchema, url, err)
	}
	return b, nil
}

func (l FSLoader) open(url string) (fs.File, error) {
	name, err := l.name(url)
	if err != nil {
		return nil, err
	}
	f, err := l.FS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownSchema, url, err)
	}
	return f, nil
}

// name maps an identifier onto its file name in FS.
func (l FSLoader) name(url string) (string, error) {
	url, _, _ = strings.Cut(url, "#")
	rel, ok := strings.CutPrefix(url, l.Prefix)
	if !ok || rel == "" {
		return "", fmt.Errorf("%w: %s is outside %s", ErrUnknownSchema, url, l.Prefix)
	}
	rel = path.Clean(rel)
	if !fs.ValidPath(rel) {
		return "", fmt.Errorf("%w: %s", ErrUnknownSchema, url)
	}
	return rel + ".json", nil
}
