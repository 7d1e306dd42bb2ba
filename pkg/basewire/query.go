package basewire

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Operator is a filter comparison operator.
type Operator string

// Filter comparison operators supported by the backend.
const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpLike           Operator = "~"
	OpNotLike        Operator = "!~"
)

// Filter is a node in a filter expression tree. Rendering via String is
// deterministic: operands appear exactly in the order they were given and
// parentheses appear only where Group was used.
type Filter interface {
	fmt.Stringer

	filterNode()
}

type predicate struct {
	field string
	op    Operator
	value any
}

func (p predicate) filterNode() {}

func (p predicate) String() string {
	return p.field + " " + string(p.op) + " " + renderFilterValue(p.value)
}

type conjunction struct {
	join     string
	operands []Filter
}

func (c conjunction) filterNode() {}

func (c conjunction) String() string {
	parts := make([]string, 0, len(c.operands))
	for _, op := range c.operands {
		parts = append(parts, op.String())
	}

	return strings.Join(parts, c.join)
}

type group struct {
	inner Filter
}

func (g group) filterNode() {}

func (g group) String() string {
	return "(" + g.inner.String() + ")"
}

type rawFilter string

func (r rawFilter) filterNode() {}

func (r rawFilter) String() string {
	return string(r)
}

// F builds a single field comparison.
func F(field string, op Operator, value any) Filter {
	return predicate{field: field, op: op, value: value}
}

// And joins filters with " && ". No parentheses are added; wrap operands in
// Group where precedence matters.
func And(filters ...Filter) Filter {
	if len(filters) == 1 {
		return filters[0]
	}

	return conjunction{join: " && ", operands: filters}
}

// Or joins filters with " || ". No parentheses are added; wrap operands in
// Group where precedence matters.
func Or(filters ...Filter) Filter {
	if len(filters) == 1 {
		return filters[0]
	}

	return conjunction{join: " || ", operands: filters}
}

// Group wraps a filter in parentheses.
func Group(filter Filter) Filter {
	return group{inner: filter}
}

// Raw wraps a pre-rendered filter expression. The expression is emitted
// verbatim; values inside it are the caller's responsibility.
func Raw(expr string) Filter {
	return rawFilter(expr)
}

// BindFilter substitutes {:name} placeholders in a raw filter expression
// with escaped parameter values. Unmatched placeholders are left as-is.
func BindFilter(raw string, params map[string]any) string {
	if len(params) == 0 {
		return raw
	}

	result := raw
	for name, value := range params {
		result = strings.ReplaceAll(result, "{:"+name+"}", renderFilterValue(value))
	}

	return result
}

// renderFilterValue renders a Go value as a filter literal. Strings are
// single-quoted with embedded quotes and backslashes escaped; numbers and
// bools render unquoted; times render in the backend's datetime format.
func renderFilterValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return quoteFilterString(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8:
		return strconv.FormatInt(int64(v), 10)
	case int16:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return quoteFilterString(v.UTC().Format(DateTimeLayout))
	case fmt.Stringer:
		return quoteFilterString(v.String())
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return quoteFilterString(fmt.Sprintf("%v", v))
		}

		return quoteFilterString(string(data))
	}
}

func quoteFilterString(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('\'')

	for _, r := range s {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	b.WriteByte('\'')

	return b.String()
}

// UnquoteFilterString reverses quoteFilterString: it strips the surrounding
// quotes and resolves backslash escapes.
func UnquoteFilterString(s string) (string, error) {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return "", fmt.Errorf("%w: not a quoted filter string: %q", ErrValidation, s)
	}

	inner := s[1 : len(s)-1]

	var b strings.Builder

	b.Grow(len(inner))

	escaped := false

	for _, r := range inner {
		if escaped {
			b.WriteRune(r)

			escaped = false

			continue
		}

		if r == '\\' {
			escaped = true

			continue
		}

		if r == '\'' {
			return "", fmt.Errorf("%w: unescaped quote in filter string: %q", ErrValidation, s)
		}

		b.WriteRune(r)
	}

	if escaped {
		return "", fmt.Errorf("%w: dangling escape in filter string: %q", ErrValidation, s)
	}

	return b.String(), nil
}

// ListOptions control paginated list requests. Zero-valued fields are
// omitted from the query string; negative Page or PerPage is rejected
// before any request is made.
type ListOptions struct {
	Page      int
	PerPage   int
	Sort      string
	Filter    string
	Expand    string
	Fields    string
	SkipTotal bool
	// Query carries extra parameters verbatim.
	Query map[string]string
}

// NewListOptions creates empty list options.
func NewListOptions() *ListOptions {
	return &ListOptions{}
}

// WithPage sets the page (1-based).
func (o *ListOptions) WithPage(page int) *ListOptions {
	o.Page = page

	return o
}

// WithPerPage sets the page size.
func (o *ListOptions) WithPerPage(perPage int) *ListOptions {
	o.PerPage = perPage

	return o
}

// WithSort sets the sort expression, e.g. "-created,id".
func (o *ListOptions) WithSort(sort string) *ListOptions {
	o.Sort = sort

	return o
}

// WithFilter sets the filter expression.
func (o *ListOptions) WithFilter(filter Filter) *ListOptions {
	o.Filter = filter.String()

	return o
}

// WithFilterString sets a pre-rendered filter expression.
func (o *ListOptions) WithFilterString(filter string) *ListOptions {
	o.Filter = filter

	return o
}

// WithExpand sets the relations to expand, e.g. "author,tags".
func (o *ListOptions) WithExpand(expand string) *ListOptions {
	o.Expand = expand

	return o
}

// WithFields restricts the returned fields.
func (o *ListOptions) WithFields(fields string) *ListOptions {
	o.Fields = fields

	return o
}

// WithSkipTotal skips the total count query on the server.
func (o *ListOptions) WithSkipTotal() *ListOptions {
	o.SkipTotal = true

	return o
}

// WithParam sets an extra query parameter passed through verbatim.
func (o *ListOptions) WithParam(key, value string) *ListOptions {
	if o.Query == nil {
		o.Query = make(map[string]string)
	}

	o.Query[key] = value

	return o
}

// ToValues renders the options as URL query values.
func (o *ListOptions) ToValues() (url.Values, error) {
	values := url.Values{}

	if o == nil {
		return values, nil
	}

	if o.Page < 0 || o.PerPage < 0 {
		return nil, fmt.Errorf("%w: %w: page=%d perPage=%d",
			ErrValidation, ErrPageOutOfRange, o.Page, o.PerPage)
	}

	if o.Page > 0 {
		values.Set("page", strconv.Itoa(o.Page))
	}

	if o.PerPage > 0 {
		values.Set("perPage", strconv.Itoa(o.PerPage))
	}

	if o.Sort != "" {
		values.Set("sort", o.Sort)
	}

	if o.Filter != "" {
		values.Set("filter", o.Filter)
	}

	if o.Expand != "" {
		values.Set("expand", o.Expand)
	}

	if o.Fields != "" {
		values.Set("fields", o.Fields)
	}

	if o.SkipTotal {
		values.Set("skipTotal", "1")
	}

	for key, value := range o.Query {
		values.Set(key, value)
	}

	return values, nil
}
