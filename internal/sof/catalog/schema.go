// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/sofproj/sof-mcp/internal/errors"
)

// schemaSource is the closed CUE definition every catalog document must
// satisfy before it is decoded.
const schemaSource = `
#EventType: "arrival" | "berthing" | "loading" | "discharging" | "pilot" | "departure" | "weather" | "other"

#Rule: {
	name:       string & =~"^[a-z][a-z0-9_]*$"
	event_type: #EventType
	label:      string & !=""
	phase?:     "start" | "end" | "point"
	keywords?: [...(string & !="")]
	pattern?: string & !=""
	required_context?: {
		time_within?: int & >0
		any_of?: [...(string & !="")]
	}
	base_confidence: number & >=0 & <=1
	priority?:       int & >=0
}

#Catalog: {
	version: string & !=""
	rules: [#Rule, ...#Rule]
	context_keywords?: {[#EventType]: [...(string & !="")]}
	ports?: [...(string & !="")]
}
`

// validateSchema checks a JSON document against #Catalog.
func validateSchema(doc []byte) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return errors.Wrap(err, "compile catalog schema")
	}
	def := schema.LookupPath(cue.ParsePath("#Catalog"))

	data := ctx.CompileBytes(doc)
	if err := data.Err(); err != nil {
		return errors.WrapCatalog(err, "parse catalog document")
	}

	if err := def.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return errors.WithHint(
			errors.WrapCatalog(errors.New(strings.TrimSpace(cueerrors.Details(err, nil))), "catalog does not match schema"),
			"every rule needs name, event_type, label and base_confidence; unknown fields are rejected",
		)
	}
	return nil
}
