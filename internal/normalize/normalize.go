// Package normalize turns the list and object payloads returned by the
// JobPilot API into one uniform shape.
//
// The API answers list endpoints in several layouts:
//
//	{"data": {"attributes": [...]}}
//	{"data": {"attributes": {...}}}        single record, treated as a one-item list
//	{"data": [...]}
//	[...]
//	{"items": [...], "total": n}
//	{"users": [...], "total": n, "page": p, "limit": l}   also jobs, results, docs
//
// Parse recognises each layout explicitly and fails with a *ParseError on
// anything else. Normalize is the lenient variant for callers that prefer an
// empty page over an error.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Shape names the layout a payload was recognised as
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapeAttributesList
	ShapeAttributesObject
	ShapeDataArray
	ShapeBareArray
	ShapeItemsTotal
	ShapeNamedList
	ShapeUnknown
)

var shapeNames = map[Shape]string{
	ShapeEmpty:            "empty",
	ShapeAttributesList:   "data.attributes[]",
	ShapeAttributesObject: "data.attributes{}",
	ShapeDataArray:        "data[]",
	ShapeBareArray:        "array",
	ShapeItemsTotal:       "items+total",
	ShapeNamedList:        "named list",
	ShapeUnknown:          "unknown",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "shape(" + strconv.Itoa(int(s)) + ")"
}

// namedListKeys are the collection keys older endpoints use instead of "items"
var namedListKeys = []string{"users", "jobs", "results", "docs"}

// Page is the uniform list result
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// Empty returns a page with no items and a zero total
func Empty[T any]() Page[T] {
	return Page[T]{Items: []T{}}
}

// AnyItems returns the items for callers that do not know T
func (p Page[T]) AnyItems() []interface{} {
	out := make([]interface{}, len(p.Items))
	for i, item := range p.Items {
		out[i] = item
	}
	return out
}

// TotalCount returns Total; it lets type-erased callers read it
func (p Page[T]) TotalCount() int {
	return p.Total
}

// ErrUnrecognizedShape is wrapped by every ParseError raised for a layout
// that matches none of the known shapes.
var ErrUnrecognizedShape = errors.New("unrecognized response shape")

// ParseError reports a payload that could not be turned into a page or object
type ParseError struct {
	Shape  Shape
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "could not parse response"
	if e.Shape != ShapeUnknown {
		msg += " (" + e.Shape.String() + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a *ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Parse decodes a list payload into a Page, failing on unknown layouts
func Parse[T any](raw []byte) (Page[T], Shape, error) {
	raw = bytes.TrimSpace(raw)
	if isEmptyJSON(raw) {
		return Empty[T](), ShapeEmpty, nil
	}

	switch raw[0] {
	case '[':
		items, err := decodeItems[T](raw)
		if err != nil {
			return Empty[T](), ShapeBareArray, &ParseError{Shape: ShapeBareArray, Err: err}
		}
		return pageOf(items, -1, 0, 0), ShapeBareArray, nil
	case '{':
		return parseObjectList[T](raw)
	default:
		return Empty[T](), ShapeUnknown, &ParseError{Shape: ShapeUnknown, Reason: "payload is not an object or array", Err: ErrUnrecognizedShape}
	}
}

// Normalize is Parse without the error: anything unparseable yields an empty page
func Normalize[T any](raw []byte) Page[T] {
	page, _, err := Parse[T](raw)
	if err != nil {
		return Empty[T]()
	}
	return page
}

// ParseOne decodes a single-record payload. It accepts
// {"data":{"attributes":{...}}}, {"data":{"attributes":[{...}]}}, {"data":{...}}
// and a bare object. A nil result with a nil error means the API returned no record.
func ParseOne[T any](raw []byte) (*T, Shape, error) {
	raw = bytes.TrimSpace(raw)
	if isEmptyJSON(raw) {
		return nil, ShapeEmpty, nil
	}
	if raw[0] != '{' {
		return nil, ShapeUnknown, &ParseError{Shape: ShapeUnknown, Reason: "expected an object", Err: ErrUnrecognizedShape}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, ShapeUnknown, &ParseError{Shape: ShapeUnknown, Err: err}
	}

	data, hasData := top["data"]
	if !hasData {
		return decodeOne[T](raw, ShapeUnknown)
	}
	data = bytes.TrimSpace(data)
	if isEmptyJSON(data) {
		return nil, ShapeEmpty, nil
	}
	if data[0] != '{' {
		return nil, ShapeDataArray, &ParseError{Shape: ShapeDataArray, Reason: "expected a single record"}
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, ShapeUnknown, &ParseError{Shape: ShapeUnknown, Err: err}
	}
	attrs, hasAttrs := inner["attributes"]
	if !hasAttrs {
		return decodeOne[T](data, ShapeUnknown)
	}
	attrs = bytes.TrimSpace(attrs)
	if isEmptyJSON(attrs) {
		return nil, ShapeEmpty, nil
	}
	if attrs[0] == '[' {
		items, err := decodeItems[T](attrs)
		if err != nil {
			return nil, ShapeAttributesList, &ParseError{Shape: ShapeAttributesList, Err: err}
		}
		if len(items) == 0 {
			return nil, ShapeEmpty, nil
		}
		return &items[0], ShapeAttributesList, nil
	}
	return decodeOne[T](attrs, ShapeAttributesObject)
}

func parseObjectList[T any](raw []byte) (Page[T], Shape, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return Empty[T](), ShapeUnknown, &ParseError{Shape: ShapeUnknown, Err: err}
	}
	if len(top) == 0 {
		return Empty[T](), ShapeEmpty, nil
	}

	if data, ok := top["data"]; ok {
		return parseDataEnvelope[T](bytes.TrimSpace(data))
	}

	if items, ok := top["items"]; ok {
		list, err := decodeItems[T](items)
		if err != nil {
			return Empty[T](), ShapeItemsTotal, &ParseError{Shape: ShapeItemsTotal, Err: err}
		}
		return pageOf(list, totalOf(top), readInt(top["page"], 0), readInt(top["limit"], 0)), ShapeItemsTotal, nil
	}

	for _, key := range namedListKeys {
		items, ok := top[key]
		if !ok {
			continue
		}
		list, err := decodeItems[T](items)
		if err != nil {
			return Empty[T](), ShapeNamedList, &ParseError{Shape: ShapeNamedList, Reason: "field " + key, Err: err}
		}
		return pageOf(list, totalOf(top), readInt(top["page"], 0), readInt(top["limit"], 0)), ShapeNamedList, nil
	}

	return Empty[T](), ShapeUnknown, &ParseError{Shape: ShapeUnknown, Reason: "no list field found", Err: ErrUnrecognizedShape}
}

func parseDataEnvelope[T any](data []byte) (Page[T], Shape, error) {
	if isEmptyJSON(data) {
		return Empty[T](), ShapeEmpty, nil
	}

	if data[0] == '[' {
		items, err := decodeItems[T](data)
		if err != nil {
			return Empty[T](), ShapeDataArray, &ParseError{Shape: ShapeDataArray, Err: err}
		}
		return pageOf(items, -1, 0, 0), ShapeDataArray, nil
	}
	if data[0] != '{' {
		return Empty[T](), ShapeUnknown, &ParseError{Shape: ShapeUnknown, Reason: "data is not an object or array", Err: ErrUnrecognizedShape}
	}

	var inner map[string]json.RawMessage
	if err := json.Unmarshal(data, &inner); err != nil {
		return Empty[T](), ShapeUnknown, &ParseError{Shape: ShapeUnknown, Err: err}
	}

	attrs, ok := inner["attributes"]
	if !ok {
		return Empty[T](), ShapeUnknown, &ParseError{Shape: ShapeUnknown, Reason: "data has no attributes", Err: ErrUnrecognizedShape}
	}
	attrs = bytes.TrimSpace(attrs)
	if isEmptyJSON(attrs) {
		return Empty[T](), ShapeEmpty, nil
	}

	switch attrs[0] {
	case '[':
		items, err := decodeItems[T](attrs)
		if err != nil {
			return Empty[T](), ShapeAttributesList, &ParseError{Shape: ShapeAttributesList, Err: err}
		}
		return pageOf(items, -1, 0, 0), ShapeAttributesList, nil
	case '{':
		var one T
		if err := json.Unmarshal(attrs, &one); err != nil {
			return Empty[T](), ShapeAttributesObject, &ParseError{Shape: ShapeAttributesObject, Err: err}
		}
		return pageOf([]T{one}, -1, 0, 0), ShapeAttributesObject, nil
	default:
		return Empty[T](), ShapeUnknown, &ParseError{Shape: ShapeUnknown, Reason: "attributes is not an object or array", Err: ErrUnrecognizedShape}
	}
}

func decodeItems[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if isEmptyJSON(raw) {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func decodeOne[T any](raw []byte, shape Shape) (*T, Shape, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, shape, &ParseError{Shape: shape, Err: err}
	}
	return &v, shape, nil
}

// pageOf builds a page; a negative total means "use the item count".
func pageOf[T any](items []T, total, page, limit int) Page[T] {
	if total < 0 {
		total = len(items)
	}
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit}
}

// totalOf reads "total", falling back to the "totalResults" some endpoints send
func totalOf(top map[string]json.RawMessage) int {
	if n := readInt(top["total"], -1); n >= 0 {
		return n
	}
	return readInt(top["totalResults"], -1)
}

// readInt accepts a JSON number or a numeric string and falls back otherwise.
// Negative values also fall back so a page total is never negative.
func readInt(raw json.RawMessage, fallback int) int {
	raw = bytes.TrimSpace(raw)
	if isEmptyJSON(raw) {
		return fallback
	}

	var n json.Number
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fallback
		}
		n = json.Number(s)
	} else if err := json.Unmarshal(raw, &n); err != nil {
		return fallback
	}

	if i, err := n.Int64(); err == nil && i >= 0 {
		return int(i)
	}
	if f, err := n.Float64(); err == nil && f >= 0 {
		return int(f)
	}
	return fallback
}

func isEmptyJSON(raw []byte) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// Describe is a short human-readable summary used in logs
func Describe[T any](p Page[T], s Shape) string {
	return fmt.Sprintf("%d/%d items via %s", len(p.Items), p.Total, s)
}
