package lazex

import (
	"fmt"
	"reflect"
	"sort"

	"fortio.org/safecast"

	"github.com/funvibe/lazex/internal/evaluator"
)

// Marshaller handles conversion between Go and Lazex values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

var objectType = reflect.TypeOf((*evaluator.Object)(nil)).Elem()

// ToValue converts a Go value to a Lazex Object.
func (m *Marshaller) ToValue(val interface{}) (evaluator.Object, error) {
	if val == nil {
		return evaluator.NIL, nil
	}

	// Check if already an Object
	if obj, ok := val.(evaluator.Object); ok {
		return obj, nil
	}

	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return evaluator.NIL, nil
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &evaluator.Integer{Value: v.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := safecast.Conv[int64](v.Uint())
		if err != nil {
			return nil, fmt.Errorf("%d does not fit in Int: %w", v.Uint(), err)
		}
		return &evaluator.Integer{Value: n}, nil
	case reflect.Float32, reflect.Float64:
		return &evaluator.Float{Value: v.Float()}, nil
	case reflect.Bool:
		if v.Bool() {
			return evaluator.TRUE, nil
		}
		return evaluator.FALSE, nil
	case reflect.String:
		return &evaluator.String{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		return m.sliceToList(v)
	case reflect.Map:
		return m.mapToRecord(v)
	case reflect.Struct:
		// Struct by value -> Record (copy)
		return m.structToRecord(v)
	case reflect.Ptr:
		if v.IsNil() {
			return evaluator.NIL, nil
		}
		return m.ToValue(v.Elem().Interface())
	case reflect.Func:
		return m.hostCall("host function", v), nil
	}
	return nil, fmt.Errorf("unsupported Go type %s", v.Type())
}

// FromValue converts a Lazex Object to a Go value.
// targetType is optional; if provided, tries to convert to that type.
// Deferred handles convert to their raw text and are never evaluated.
func (m *Marshaller) FromValue(obj evaluator.Object, targetType reflect.Type) (interface{}, error) {
	if obj == nil {
		return nil, nil
	}

	// If target type is evaluator.Object, return as is
	if targetType == objectType {
		return obj, nil
	}

	switch o := obj.(type) {
	case *evaluator.Integer:
		if targetType != nil {
			switch targetType.Kind() {
			case reflect.Int64:
				return o.Value, nil
			case reflect.Int32:
				return safecast.Conv[int32](o.Value)
			case reflect.Uint, reflect.Uint64:
				return safecast.Conv[uint64](o.Value)
			case reflect.Float64, reflect.Float32:
				return float64(o.Value), nil
			}
		}
		return safecast.Conv[int](o.Value) // Default to int
	case *evaluator.Float:
		return o.Value, nil
	case *evaluator.Boolean:
		return o.Value, nil
	case *evaluator.String:
		return o.Value, nil
	case *evaluator.Nil:
		return nil, nil
	case *evaluator.List:
		return m.listToSlice(o, targetType)
	case *evaluator.Record:
		return m.recordToMap(o)
	case *evaluator.Handle:
		return o.Deferred.Raw(), nil
	case *evaluator.ArgsBundle:
		return o.Args.String(), nil
	case *evaluator.AstNode:
		return o.Inspect(), nil
	case *evaluator.Function, *evaluator.Builtin, *evaluator.BoundMethod:
		// Callables stay opaque; pass them back to Set or Call.
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported type for conversion: %s", obj.RuntimeType())
}

func (m *Marshaller) sliceToList(v reflect.Value) (*evaluator.List, error) {
	elements := make([]evaluator.Object, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elements[i] = val
	}
	return &evaluator.List{Elements: elements}, nil
}

// mapToRecord converts a string-keyed map. Keys are sorted so records built
// from the same map always print the same way.
func (m *Marshaller) mapToRecord(v reflect.Value) (*evaluator.Record, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("map keys must be strings, got %s", v.Type().Key())
	}
	keys := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	rec := evaluator.NewRecord()
	for _, k := range keys {
		val, err := m.ToValue(v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key())).Interface())
		if err != nil {
			return nil, fmt.Errorf("map value %s: %w", k, err)
		}
		rec.Set(k, val)
	}
	return rec, nil
}

func (m *Marshaller) structToRecord(v reflect.Value) (*evaluator.Record, error) {
	rec := evaluator.NewRecord()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" { // Skip unexported fields
			continue
		}
		val, err := m.ToValue(v.Field(i).Interface())
		if err != nil {
			return nil, err
		}
		rec.Set(field.Name, val)
	}
	return rec, nil
}

func (m *Marshaller) listToSlice(l *evaluator.List, targetType reflect.Type) (interface{}, error) {
	// If targetType is nil, default to []interface{}
	elemType := reflect.TypeOf((*interface{})(nil)).Elem()
	if targetType != nil && targetType.Kind() == reflect.Slice {
		elemType = targetType.Elem()
	}

	slice := reflect.MakeSlice(reflect.SliceOf(elemType), 0, len(l.Elements))
	for _, el := range l.Elements {
		val, err := m.FromValue(el, elemType)
		if err != nil {
			return nil, err
		}

		if val == nil {
			// Handle nil for pointers/interfaces
			slice = reflect.Append(slice, reflect.Zero(elemType))
			continue
		}
		rv := reflect.ValueOf(val)
		switch {
		case rv.Type().AssignableTo(elemType):
			slice = reflect.Append(slice, rv)
		case rv.Type().ConvertibleTo(elemType):
			slice = reflect.Append(slice, rv.Convert(elemType))
		default:
			return nil, fmt.Errorf("cannot convert %s to %s", rv.Type(), elemType)
		}
	}
	return slice.Interface(), nil
}

func (m *Marshaller) recordToMap(r *evaluator.Record) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(r.Keys))
	for _, k := range r.Keys {
		val, err := m.FromValue(r.Fields[k], nil)
		if err != nil {
			return nil, err
		}
		result[k] = val
	}
	return result, nil
}
