package jsonvalue

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Field is a single key/value pair used to build objects.
type Field struct {
	Key   string
	Value Value
}

// F is shorthand for Field{Key: key, Value: v}.
func F(key string, v Value) Field {
	return Field{Key: key, Value: v}
}

// Object is an ordered field→value mapping under construction. Call Value to
// freeze it into an object Value; further Set calls do not affect values that
// were already produced.
type Object struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty object builder.
func NewObject() *Object {
	return &Object{fields: orderedmap.New[string, Value]()}
}

// ObjectOf returns an object value holding fields in the given order. A
// repeated key keeps its first position and takes the last value.
func ObjectOf(fields ...Field) Value {
	o := NewObject()
	for _, f := range fields {
		o.Set(f.Key, f.Value)
	}
	return o.Value()
}

// Set assigns key. An existing key keeps its position.
func (o *Object) Set(key string, v Value) *Object {
	o.fields.Set(key, v)
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Null(), false
	}
	return o.fields.Get(key)
}

// Len returns the number of fields.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return o.fields.Len()
}

// Keys returns field names in order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, 0, o.fields.Len())
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Value freezes the builder into an object Value.
func (o *Object) Value() Value {
	return Value{kind: KindObject, obj: o.clone()}
}

func (o *Object) clone() *Object {
	cp := NewObject()
	if o == nil {
		return cp
	}
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		cp.fields.Set(pair.Key, pair.Value)
	}
	return cp
}

func (o *Object) equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	if o.Len() == 0 {
		return true
	}
	a, b := o.fields.Oldest(), other.fields.Oldest()
	for a != nil && b != nil {
		if a.Key != b.Key || !Equal(a.Value, b.Value) {
			return false
		}
		a, b = a.Next(), b.Next()
	}
	return a == nil && b == nil
}
