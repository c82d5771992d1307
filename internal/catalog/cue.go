package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/carelog/internal/records"
)

//go:embed schema.cue
var schemaSource string

// CompileError reports an invalid catalog file with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// cueIntent mirrors #Intent for decoding.
type cueIntent struct {
	Keywords []string `json:"keywords"`
	Examples []string `json:"examples"`
	Action   string   `json:"action"`
	Category string   `json:"category"`
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}

// LoadCUE reads a catalog file. The file declares intents under "intent",
// in catalog order, and optional priority overrides under "override":
//
//	intent: log_weight: {
//		keywords: ["weight", "kg"]
//		examples: ["log weight 65kg"]
//		action:   "create"
//		category: "weight"
//		required: ["weight"]
//	}
//	override: [{intent: "log_weight", terms: ["scale"]}]
func LoadCUE(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return CompileCUE(data, path)
}

// CompileCUE validates source against the embedded #Catalog schema and
// builds a Catalog from it. filename is used in error positions.
func CompileCUE(source []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	file := ctx.CompileBytes(source, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	intents, err := compileIntents(v.LookupPath(cue.ParsePath("intent")))
	if err != nil {
		return nil, err
	}

	var overrides []Override
	if ov := v.LookupPath(cue.ParsePath("override")); ov.Exists() {
		if err := ov.Decode(&overrides); err != nil {
			return nil, formatCUEError(err)
		}
	}

	c, err := New(intents, overrides)
	if err != nil {
		return nil, &CompileError{Field: "catalog", Message: err.Error(), Pos: v.Pos()}
	}
	return c, nil
}

// compileIntents walks the intent struct in declaration order.
func compileIntents(v cue.Value) ([]Definition, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []Definition
	for iter.Next() {
		var ci cueIntent
		if err := iter.Value().Decode(&ci); err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, Definition{
			Name:     iter.Selector().Unquoted(),
			Keywords: ci.Keywords,
			Examples: ci.Examples,
			Action:   Action(ci.Action),
			Category: records.Category(ci.Category),
			Required: ci.Required,
			Optional: ci.Optional,
		})
	}
	if len(out) == 0 {
		return nil, &CompileError{Field: "intent", Message: "at least one intent is required", Pos: v.Pos()}
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
