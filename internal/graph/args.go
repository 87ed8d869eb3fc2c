package graph

import (
	"fmt"
	"reflect"

	"github.com/99designs/gqlgen/graphql"
)

// argString returns an optional String argument. Absent and null arguments
// both yield nil.
func argString(args map[string]any, name string) (*string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	s, err := graphql.UnmarshalString(v)
	if err != nil {
		return nil, fmt.Errorf("argument %s: %w", name, err)
	}
	return &s, nil
}

func argRequiredString(args map[string]any, name string) (string, error) {
	s, err := argString(args, name)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", fmt.Errorf("argument %s is required", name)
	}
	return *s, nil
}

func argInt(args map[string]any, name string) (*int, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	i, err := graphql.UnmarshalInt(v)
	if err != nil {
		return nil, fmt.Errorf("argument %s: %w", name, err)
	}
	return &i, nil
}

// argStringList returns a [String] argument. A single value is coerced into
// a one-element list, as input coercion requires. Lists come in as []any
// from literals and as typed slices from variables.
func argStringList(args map[string]any, name string) ([]*string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}

	var items []any
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	} else {
		items = []any{v}
	}

	res := make([]*string, len(items))
	for i, item := range items {
		if isNil(item) {
			continue
		}
		s, err := graphql.UnmarshalString(item)
		if err != nil {
			return nil, fmt.Errorf("argument %s[%d]: %w", name, i, err)
		}
		res[i] = &s
	}
	return res, nil
}
