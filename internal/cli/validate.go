// Package cli implements the docschema commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/sourcegraph/conc/pool"

	"github.com/hatsunemiku3939/docschema"
	"github.com/hatsunemiku3939/docschema/internal/console"
	"github.com/hatsunemiku3939/docschema/pkg/report"
)

// DefaultConcurrency bounds the number of files validated at once.
const DefaultConcurrency = 4

// ValidateOptions controls the validate command.
type ValidateOptions struct {
	// Kind bypasses $schema dispatch when set.
	Kind docschema.SchemaKind
	// JSON prints machine readable results.
	JSON bool
	// Raw prints the raw failure tree below each report.
	Raw         bool
	Concurrency int
}

// FileResult is the outcome of validating one file.
type FileResult struct {
	File string
	Err  error
}

// Failed reports whether the file was rejected.
func (r FileResult) Failed() bool { return r.Err != nil }

// ValidateFiles validates files concurrently. Results keep the order of files.
func ValidateFiles(v *docschema.Validator, files []string, opts ValidateOptions) []FileResult {
	n := opts.Concurrency
	if n < 1 {
		n = DefaultConcurrency
	}

	type indexed struct {
		i int
		r FileResult
	}
	p := pool.NewWithResults[indexed]().WithMaxGoroutines(n)
	for i, file := range files {
		p.Go(func() indexed {
			return indexed{i: i, r: ValidateFile(v, file, opts.Kind)}
		})
	}
	done := p.Wait()
	sort.Slice(done, func(a, b int) bool { return done[a].i < done[b].i })

	results := make([]FileResult, len(done))
	for i, d := range done {
		results[i] = d.r
	}
	return results
}

// ValidateFile reads and validates a single file.
func ValidateFile(v *docschema.Validator, file string, kind docschema.SchemaKind) FileResult {
	doc, err := ReadDocument(file)
	if err != nil {
		return FileResult{File: file, Err: err}
	}
	if kind != "" {
		return FileResult{File: file, Err: v.ValidateAgainst(doc, kind)}
	}
	return FileResult{File: file, Err: v.Validate(doc)}
}

// ReadDocument returns the JSON text of file. YAML files are converted.
func ReadDocument(file string) ([]byte, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		out, err := yaml.YAMLToJSON(b)
		if err != nil {
			return nil, &docschema.Error{Kind: docschema.FailMalformedInput, Err: fmt.Errorf("convert yaml: %w", err)}
		}
		return out, nil
	}
	return b, nil
}

// jsonResult is the --json rendering of a FileResult.
type jsonResult struct {
	File   string         `json:"file"`
	Valid  bool           `json:"valid"`
	Kind   string         `json:"kind,omitempty"`
	Schema string         `json:"schema,omitempty"`
	Errors *report.Report `json:"errors,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// PrintResults writes results to w and returns the number of rejected files.
func PrintResults(w io.Writer, results []FileResult, opts ValidateOptions) (int, error) {
	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}

	if opts.JSON {
		out := make([]jsonResult, 0, len(results))
		for _, r := range results {
			out = append(out, toJSONResult(r))
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return failed, enc.Encode(out)
	}

	for _, r := range results {
		if _, err := io.WriteString(w, formatResult(r, opts.Raw)); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

func toJSONResult(r FileResult) jsonResult {
	out := jsonResult{File: r.File, Valid: !r.Failed()}
	if !r.Failed() {
		return out
	}
	out.Kind = docschema.KindOf(r.Err).String()
	var verr *docschema.Error
	if errors.As(r.Err, &verr) {
		out.Schema = verr.Identifier
		if verr.Kind == docschema.FailSchemaViolation {
			rep := verr.Report()
			out.Errors = &rep
			return out
		}
	}
	out.Error = r.Err.Error()
	return out
}

func formatResult(r FileResult, raw bool) string {
	if !r.Failed() {
		return console.FormatSuccessMessage(r.File) + "\n"
	}
	var verr *docschema.Error
	if errors.As(r.Err, &verr) && verr.Kind == docschema.FailSchemaViolation {
		out := console.FormatReport(r.File, verr.Report())
		if raw {
			out += console.FormatFailureTree(verr.Failure)
		}
		return out
	}
	return console.FormatErrorMessage(fmt.Sprintf("%s: %v", r.File, r.Err)) + "\n"
}
