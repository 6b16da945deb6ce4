package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"

	apperrors "github.com/johnquangdev/meeting-portal/errors"
)

// Kind tells the cache layer whether an endpoint reads or writes
type Kind int

const (
	KindQuery Kind = iota
	KindMutation
)

func (k Kind) String() string {
	if k == KindMutation {
		return "mutation"
	}
	return "query"
}

// Request carries path parameters and an optional JSON body for one call
type Request struct {
	Params map[string]string
	Body   any
}

// Param returns the named path parameter
func (r Request) Param(name string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// Descriptor is the static definition of one server operation
type Descriptor struct {
	Name   string
	Method string
	// Path is relative to the API base URL; "{name}" placeholders are
	// filled from Request.Params.
	Path string
	Kind Kind

	// Decode turns a 2xx body into the value handed to callers. Nil keeps the
	// raw json.RawMessage.
	Decode func(body []byte) (any, error)

	// ProvidesTags labels a query result. result is nil when the read failed.
	ProvidesTags func(result any, req Request) []Tag

	// InvalidatesTags names the tags a successful mutation makes stale.
	InvalidatesTags func(result any, req Request) []Tag
}

// BuildPath substitutes params into the path template
func (d *Descriptor) BuildPath(req Request) (string, error) {
	var b strings.Builder
	rest := d.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		name := rest[open+1 : open+end]
		value := req.Param(name)
		if value == "" {
			return "", apperrors.ErrValidation("Missing request parameter", map[string]string{name: name + " is required"})
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[open+end+1:]
	}
	return b.String(), nil
}

// CacheKey serialises the read identity of (name, params). Bodies are not
// part of the key because queries carry none.
func (d *Descriptor) CacheKey(req Request) string {
	if len(req.Params) == 0 {
		return d.Name + "()"
	}
	keys := make([]string, 0, len(req.Params))
	for k := range req.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(d.Name)
	b.WriteByte('(')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(req.Params[k]))
	}
	b.WriteByte(')')
	return b.String()
}

// DecodeBody applies Decode, defaulting to json.RawMessage
func (d *Descriptor) DecodeBody(body []byte) (any, error) {
	if d.Decode == nil {
		return json.RawMessage(body), nil
	}
	return d.Decode(body)
}

// Provided returns the tags for a query result
func (d *Descriptor) Provided(result any, req Request) []Tag {
	if d.ProvidesTags == nil {
		return nil
	}
	return d.ProvidesTags(result, req)
}

// Invalidated returns the tags a successful mutation invalidates
func (d *Descriptor) Invalidated(result any, req Request) []Tag {
	if d.InvalidatesTags == nil {
		return nil
	}
	return d.InvalidatesTags(result, req)
}

// IsRead reports whether the descriptor is a safe, idempotent read
func (d *Descriptor) IsRead() bool {
	return d.Kind == KindQuery && (d.Method == "" || d.Method == http.MethodGet)
}

// DecodeJSON is a Decode func for a concrete response type
func DecodeJSON[T any](body []byte) (any, error) {
	var v T
	if len(body) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
