package graph

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/99designs/gqlgen/graphql"
)

// resolveIntrospectionField reads a field of one of gqlgen's introspection
// types (__Schema, __Type, __Field and friends). Fields backed by a method
// are called with the field's arguments in declaration order; the rest are
// read from the struct field of the same name.
func resolveIntrospectionField(obj any, field graphql.CollectedField, args map[string]any) (any, error) {
	if obj == nil {
		return nil, nil
	}
	name := exportedName(field.Name)
	rv := reflect.ValueOf(obj)

	if method := rv.MethodByName(name); method.IsValid() {
		in, err := introspectionArgs(method.Type(), field, args)
		if err != nil {
			return nil, err
		}
		out := method.Call(in)
		return out[0].Interface(), nil
	}

	sv := rv
	for sv.Kind() == reflect.Pointer {
		if sv.IsNil() {
			return nil, nil
		}
		sv = sv.Elem()
	}
	if sv.Kind() == reflect.Struct {
		if f := sv.FieldByName(name); f.IsValid() {
			return f.Interface(), nil
		}
	}

	return nil, fmt.Errorf("no resolver for %s on %T", field.Name, obj)
}

func introspectionArgs(mt reflect.Type, field graphql.CollectedField, args map[string]any) ([]reflect.Value, error) {
	if mt.NumIn() == 0 {
		return nil, nil
	}

	var defs []string
	if field.Definition != nil {
		for _, arg := range field.Definition.Arguments {
			defs = append(defs, arg.Name)
		}
	}

	in := make([]reflect.Value, mt.NumIn())
	for i := range in {
		pt := mt.In(i)
		in[i] = reflect.Zero(pt)
		if i >= len(defs) {
			continue
		}

		v, ok := args[defs[i]]
		if !ok || v == nil {
			continue
		}
		av := reflect.ValueOf(v)
		if !av.Type().ConvertibleTo(pt) {
			return nil, fmt.Errorf("argument %s: cannot use %T as %s", defs[i], v, pt)
		}
		in[i] = av.Convert(pt)
	}
	return in, nil
}

func exportedName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
