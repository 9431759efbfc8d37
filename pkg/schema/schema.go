// Package schema publishes the action wire contract as a CUE definition
// and validates wire documents against it.
//
// The schema is stricter than the behavioral check in pkg/action: on top
// of the key-level shape it pins the marker literal, the phase enum, and
// the progress bounds. Use it where a semantic gate is wanted, e.g. at a
// process boundary; use action.IsValid for the in-process contract.
package schema

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed action.cue
var source string

// Source returns the CUE text of the wire contract.
func Source() string {
	return source
}

// Validate checks a wire JSON document against the #Action definition.
// A nil return means the document satisfies the schema.
func Validate(data []byte) error {
	def, err := compile()
	if err != nil {
		return err
	}
	if err := cuejson.Validate(data, def); err != nil {
		return fmt.Errorf("document does not satisfy #Action: %w", err)
	}
	return nil
}

func compile() (cue.Value, error) {
	ctx := cuecontext.New()
	val := ctx.CompileString(source, cue.Filename("action.cue"))
	if err := val.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compiling schema: %w", err)
	}
	def := val.LookupPath(cue.ParsePath("#Action"))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("resolving #Action: %w", err)
	}
	return def, nil
}
