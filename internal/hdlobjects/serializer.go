package hdlobjects

import (
	"fmt"

	"github.com/mvp-joe/hdlast/internal/jsonvalue"
)

// Serializer is implemented by every node that can export itself.
type Serializer interface {
	Serialize() (jsonvalue.Value, error)
}

// Position is a 1-based source location. The zero Position means unknown.
type Position struct {
	Line int
	Col  int
}

// IsZero reports whether the position is unknown.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Col == 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

func (p Position) value() jsonvalue.Value {
	return jsonvalue.ObjectOf(
		jsonvalue.F("line", jsonvalue.Int(p.Line)),
		jsonvalue.F("col", jsonvalue.Int(p.Col)),
	)
}

// RawExpr is an expression kept as normalized source text. The frontends
// do not build expression trees; downstream tools get the text.
type RawExpr string

// Serialize returns the expression text as a JSON string.
func (e RawExpr) Serialize() (jsonvalue.Value, error) {
	return jsonvalue.String(string(e)), nil
}

// Association binds one formal of a generic or port map to an actual.
// An empty Formal is a positional association. A nil Actual is an open
// (unconnected) association.
type Association struct {
	Formal string
	Actual Serializer
}

// Serialize returns {"formal": string|null, "actual": value}.
func (a Association) Serialize() (jsonvalue.Value, error) {
	actual := jsonvalue.Null()
	if a.Actual != nil {
		v, err := a.Actual.Serialize()
		if err != nil {
			return jsonvalue.Null(), err
		}
		actual = v
	}
	return jsonvalue.ObjectOf(
		jsonvalue.F("formal", jsonvalue.StringOrNull(a.Formal)),
		jsonvalue.F("actual", actual),
	), nil
}

// serializeList serializes items in order. The first failure aborts and is
// returned wrapped with where it happened.
func serializeList[T Serializer](label string, items []T) (jsonvalue.Value, error) {
	out := make([]jsonvalue.Value, 0, len(items))
	for i, item := range items {
		v, err := item.Serialize()
		if err != nil {
			return jsonvalue.Null(), fmt.Errorf("%s[%d]: %w", label, i, err)
		}
		out = append(out, v)
	}
	return jsonvalue.Array(out...), nil
}
