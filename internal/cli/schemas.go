package cli

import (
	"fmt"
	"io"

	"github.com/hatsunemiku3939/docschema"
	"github.com/hatsunemiku3939/docschema/internal/console"
	"github.com/hatsunemiku3939/docschema/schemas"
)

// ListSchemas prints the supported root schemas and the bundled schema files.
func ListSchemas(w io.Writer, v *docschema.Validator) error {
	cfg := v.Config()
	rows := make([][]string, 0, len(cfg.Roots))
	for _, kind := range cfg.Kinds() {
		id, _ := cfg.Identifier(kind)
		rows = append(rows, []string{string(kind), string(id)})
	}
	if _, err := io.WriteString(w, console.RenderTable([]string{"KIND", "IDENTIFIER"}, rows)); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nBundled schemas (%s):\n", schemas.Version)
	for _, id := range schemas.List() {
		if _, err := fmt.Fprintf(w, "  %s\n", id); err != nil {
			return err
		}
	}
	return nil
}
