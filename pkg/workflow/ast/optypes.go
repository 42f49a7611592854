// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

package ast

import "sort"

// Built-in operation type names.
const (
	OpApiCall            = "ApiCall"
	OpFilterData         = "FilterData"
	OpTransformData      = "TransformData"
	OpConditional        = "Conditional"
	OpLoop               = "Loop"
	OpStoreData          = "StoreData"
	OpWait               = "Wait"
	OpMergeData          = "MergeData"
	OpGetCurrentDateTime = "GetCurrentDateTime"
	OpConvertTimezone    = "ConvertTimezone"
	OpDateCalculation    = "DateCalculation"
	OpFormatText         = "FormatText"
	OpExtractText        = "ExtractText"
	OpValidateData       = "ValidateData"
	OpCalculate          = "Calculate"
	OpEncodeDecode       = "EncodeDecode"
)

// TypeSpec describes the structural requirements of one operation type.
type TypeSpec struct {
	// RequiredProperties must all be present in the operation body.
	RequiredProperties []string

	// RequiresInput means the operation must carry a from clause.
	RequiresInput bool

	// RequiresOutput means the operation must carry an output arrow (->).
	RequiresOutput bool
}

// builtinTypes is the catalog of the sixteen built-in operation types.
// FilterData's where clause and Conditional's if clause are structural
// requirements checked by the validator, not listed properties.
var builtinTypes = map[string]TypeSpec{
	OpApiCall:            {RequiredProperties: []string{"method", "url"}, RequiresOutput: true},
	OpFilterData:         {RequiresInput: true, RequiresOutput: true},
	OpTransformData:      {RequiredProperties: []string{"transform"}, RequiresInput: true, RequiresOutput: true},
	OpConditional:        {},
	OpLoop:               {RequiredProperties: []string{"operations"}, RequiresInput: true},
	OpStoreData:          {RequiredProperties: []string{"storage", "key"}, RequiresInput: true},
	OpWait:               {RequiredProperties: []string{"duration"}},
	OpMergeData:          {RequiredProperties: []string{"sources", "strategy"}, RequiresOutput: true},
	OpGetCurrentDateTime: {RequiresOutput: true},
	OpConvertTimezone:    {RequiredProperties: []string{"toTimezone"}, RequiresInput: true, RequiresOutput: true},
	OpDateCalculation:    {RequiredProperties: []string{"operation"}, RequiresInput: true, RequiresOutput: true},
	OpFormatText:         {RequiredProperties: []string{"format"}, RequiresInput: true, RequiresOutput: true},
	OpExtractText:        {RequiredProperties: []string{"pattern"}, RequiresInput: true, RequiresOutput: true},
	OpValidateData:       {RequiredProperties: []string{"validationType"}, RequiresInput: true, RequiresOutput: true},
	OpCalculate:          {RequiredProperties: []string{"operation"}, RequiresInput: true, RequiresOutput: true},
	OpEncodeDecode:       {RequiredProperties: []string{"operation", "encoding"}, RequiresInput: true, RequiresOutput: true},
}

// BuiltinType returns the spec for a built-in operation type.
func BuiltinType(name string) (TypeSpec, bool) {
	spec, ok := builtinTypes[name]
	return spec, ok
}

// BuiltinTypeNames returns the built-in type names in sorted order.
func BuiltinTypeNames() []string {
	names := make([]string, 0, len(builtinTypes))
	for name := range builtinTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Comparison operator sets shared by the where and if clauses.
var (
	// BinaryOperators require a comparison value.
	BinaryOperators = map[string]bool{
		"==": true, "!=": true, ">": true, "<": true, ">=": true, "<=": true,
		"in": true, "contains": true, "startsWith": true, "endsWith": true,
	}

	// UnaryOperators take no comparison value.
	UnaryOperators = map[string]bool{
		"exists": true, "empty": true,
	}
)
