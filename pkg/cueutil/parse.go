// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

// ParseResult contains the result of a successful CUE parse operation.
type ParseResult[T any] struct {
	// Value is the decoded Go struct.
	Value *T

	// Unified is the schema-unified CUE value.
	Unified cue.Value
}

// ParseAndDecode compiles schema and data, unifies data with the definition
// at schemaPath, validates the result and decodes it into T.
//
// Every failure concerning data is returned as a *ValidationError carrying the
// offending CUE path when one is known. Failures of the embedded schema are
// reported as internal errors.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ValidationError{FilePath: filename, Message: "empty input"}
	}
	if !utf8.Valid(data) {
		return nil, &ValidationError{FilePath: filename, Message: "input is not valid UTF-8"}
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	var userValue cue.Value
	if options.json {
		if !stdjson.Valid(data) {
			return nil, &ValidationError{FilePath: filename, Message: "input is not valid JSON"}
		}
		expr, err := cuejson.Extract(filename, data)
		if err != nil {
			return nil, FormatError(err, filename)
		}
		userValue = ctx.BuildExpr(lastFieldWins(expr))
	} else {
		userValue = ctx.CompileBytes(data, cue.Filename(filename))
	}
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	if len(options.required) > 0 {
		if userValue.IncompleteKind() != cue.StructKind {
			return nil, &ValidationError{FilePath: filename, Message: "top-level value must be an object"}
		}
		for _, field := range options.required {
			if !userValue.LookupPath(cue.MakePath(cue.Str(field))).Exists() {
				return nil, &ValidationError{FilePath: filename, CUEPath: field, Message: "field is required"}
			}
		}
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)

	var validateOpts []cue.Option
	if options.concrete {
		validateOpts = append(validateOpts, cue.Concrete(true))
	}
	if err := unified.Validate(validateOpts...); err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}

// lastFieldWins drops every field of a struct literal that a later field
// with the same label overrides. CUE would otherwise unify the duplicates
// and report a conflict.
func lastFieldWins(expr ast.Expr) ast.Expr {
	switch x := expr.(type) {
	case *ast.StructLit:
		last := make(map[string]int, len(x.Elts))
		for i, decl := range x.Elts {
			if f, ok := decl.(*ast.Field); ok {
				if name, _, err := ast.LabelName(f.Label); err == nil {
					last[name] = i
				}
			}
		}
		elts := make([]ast.Decl, 0, len(x.Elts))
		for i, decl := range x.Elts {
			f, ok := decl.(*ast.Field)
			if !ok {
				elts = append(elts, decl)
				continue
			}
			if name, _, err := ast.LabelName(f.Label); err == nil && last[name] != i {
				continue
			}
			f.Value = lastFieldWins(f.Value)
			elts = append(elts, f)
		}
		x.Elts = elts
	case *ast.ListLit:
		for i, elem := range x.Elts {
			x.Elts[i] = lastFieldWins(elem)
		}
	}
	return expr
}
