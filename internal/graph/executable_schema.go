package graph

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/hmans/shelf/internal/library"
)

//go:embed schema.graphqls
var sourceData string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: sourceData, BuiltIn: false})

// NewExecutableSchema creates an ExecutableSchema from the ResolverRoot interface.
// The result can be served with gqlgen's handler package or run directly
// through its executor.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	schema := cfg.Schema
	if schema == nil {
		schema = parsedSchema
	}
	return &executableSchema{
		schema:    schema,
		resolvers: cfg.Resolvers,
	}
}

type Config struct {
	Schema    *ast.Schema
	Resolvers ResolverRoot
}

type ResolverRoot interface {
	Author() AuthorResolver
	Mutation() MutationResolver
	Query() QueryResolver
}

type AuthorResolver interface {
	BookCount(ctx context.Context, obj *library.Author) (*int, error)
}
type MutationResolver interface {
	AddBook(ctx context.Context, title *string, author *string, published *int, genres []*string) (*library.Book, error)
	EditAuthor(ctx context.Context, name *string, setBornTo *int) (*library.Author, error)
}
type QueryResolver interface {
	AllBooks(ctx context.Context, author *string, genre *string) ([]*library.Book, error)
	BookCount(ctx context.Context, authorName string) (int, error)
	AllAuthors(ctx context.Context) ([]*library.Author, error)
	AuthorCount(ctx context.Context) (int, error)
	SearchBooks(ctx context.Context, text string) ([]*library.Book, error)
}

var _ graphql.ExecutableSchema = (*executableSchema)(nil)

// executableSchema executes operations against the schema by walking the
// selection set: every field is resolved, then completed according to its
// declared type (leaf values are serialized, objects recurse, lists complete
// item by item). A null in a non-null position propagates to the nearest
// nullable parent.
type executableSchema struct {
	schema    *ast.Schema
	resolvers ResolverRoot
}

func (e *executableSchema) Schema() *ast.Schema {
	return e.schema
}

func (e *executableSchema) Complexity(ctx context.Context, typeName, fieldName string, childComplexity int, args map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)

	var root *ast.Definition
	switch opCtx.Operation.Operation {
	case ast.Query:
		root = e.schema.Query
	case ast.Mutation:
		root = e.schema.Mutation
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}
	if root == nil {
		return graphql.OneShot(graphql.ErrorResponse(ctx, "schema does not support %s operations", opCtx.Operation.Operation))
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		// Root fields run in document order; for mutations this is required.
		data, _ := e.executeSelectionSet(ctx, root, nil, opCtx.Operation.SelectionSet)

		var buf bytes.Buffer
		data.MarshalGQL(&buf)

		return &graphql.Response{Data: buf.Bytes()}
	}
}

// executeSelectionSet resolves the fields selected on obj. The boolean is
// false when a non-null field came back null, in which case the whole object
// must be nulled by the caller.
func (e *executableSchema) executeSelectionSet(ctx context.Context, def *ast.Definition, obj any, sel ast.SelectionSet) (graphql.Marshaler, bool) {
	opCtx := graphql.GetOperationContext(ctx)
	fields := graphql.CollectFields(opCtx, sel, []string{def.Name})

	out := &orderedObject{}
	for _, field := range fields {
		if field.Name == "__typename" {
			out.add(field.Alias, graphql.MarshalString(def.Name))
			continue
		}

		value, ok := e.executeField(ctx, def.Name, obj, field)
		if !ok {
			return graphql.Null, false
		}
		out.add(field.Alias, value)
	}

	return out, true
}

func (e *executableSchema) executeField(ctx context.Context, object string, obj any, field graphql.CollectedField) (graphql.Marshaler, bool) {
	if field.Definition == nil {
		graphql.AddErrorf(ctx, "unknown field %s.%s", object, field.Name)
		return graphql.Null, true
	}

	fc := &graphql.FieldContext{
		Object:     object,
		Field:      field,
		Args:       field.ArgumentMap(graphql.GetOperationContext(ctx).Variables),
		IsMethod:   true,
		IsResolver: isResolverField(object, field.Name),
	}
	ctx = graphql.WithFieldContext(ctx, fc)

	res, err := e.resolveField(ctx, object, obj, field, fc.Args)
	if err != nil {
		graphql.AddError(ctx, err)
		return nullFor(field.Definition.Type)
	}
	fc.Result = res

	return e.completeValue(ctx, field.Definition.Type, field, res)
}

// resolveField computes the raw value of a field. Panics in resolvers are
// turned into field errors by the operation's recover func.
func (e *executableSchema) resolveField(ctx context.Context, object string, obj any, field graphql.CollectedField, args map[string]any) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = graphql.GetOperationContext(ctx).Recover(ctx, r)
		}
	}()

	switch object {
	case "Query":
		return e.resolveQueryField(ctx, field, args)
	case "Mutation":
		return e.resolveMutationField(ctx, field, args)
	case "Author":
		return e.resolveAuthorField(ctx, obj.(*library.Author), field)
	case "Book":
		return resolveBookField(obj.(*library.Book), field)
	}

	if strings.HasPrefix(object, "__") {
		return resolveIntrospectionField(obj, field, args)
	}
	return nil, fmt.Errorf("unknown type %s", object)
}

func (e *executableSchema) resolveQueryField(ctx context.Context, field graphql.CollectedField, args map[string]any) (any, error) {
	switch field.Name {
	case "allBooks":
		author, err := argString(args, "author")
		if err != nil {
			return nil, err
		}
		genre, err := argString(args, "genre")
		if err != nil {
			return nil, err
		}
		return callResolver(ctx, func(ctx context.Context) (any, error) {
			return e.resolvers.Query().AllBooks(ctx, author, genre)
		})

	case "bookCount":
		authorName, err := argRequiredString(args, "authorName")
		if err != nil {
			return nil, err
		}
		return callResolver(ctx, func(ctx context.Context) (any, error) {
			return e.resolvers.Query().BookCount(ctx, authorName)
		})

	case "allAuthors":
		return callResolver(ctx, func(ctx context.Context) (any, error) {
			return e.resolvers.Query().AllAuthors(ctx)
		})

	case "authorCount":
		return callResolver(ctx, func(ctx context.Context) (any, error) {
			return e.resolvers.Query().AuthorCount(ctx)
		})

	case "searchBooks":
		text, err := argRequiredString(args, "text")
		if err != nil {
			return nil, err
		}
		return callResolver(ctx, func(ctx context.Context) (any, error) {
			return e.resolvers.Query().SearchBooks(ctx, text)
		})

	case "__schema":
		if graphql.GetOperationContext(ctx).DisableIntrospection {
			return nil, errors.New("introspection disabled")
		}
		return introspection.WrapSchema(e.schema), nil

	case "__type":
		if graphql.GetOperationContext(ctx).DisableIntrospection {
			return nil, errors.New("introspection disabled")
		}
		name, err := argRequiredString(args, "name")
		if err != nil {
			return nil, err
		}
		def := e.schema.Types[name]
		if def == nil {
			return nil, nil
		}
		return introspection.WrapTypeFromDef(e.schema, def), nil
	}

	return nil, fmt.Errorf("unknown field Query.%s", field.Name)
}

func (e *executableSchema) resolveMutationField(ctx context.Context, field graphql.CollectedField, args map[string]any) (any, error) {
	switch field.Name {
	case "addBook":
		title, err := argString(args, "title")
		if err != nil {
			return nil, err
		}
		author, err := argString(args, "author")
		if err != nil {
			return nil, err
		}
		published, err := argInt(args, "published")
		if err != nil {
			return nil, err
		}
		genres, err := argStringList(args, "genres")
		if err != nil {
			return nil, err
		}
		return callResolver(ctx, func(ctx context.Context) (any, error) {
			return e.resolvers.Mutation().AddBook(ctx, title, author, published, genres)
		})

	case "editAuthor":
		name, err := argString(args, "name")
		if err != nil {
			return nil, err
		}
		setBornTo, err := argInt(args, "setBornTo")
		if err != nil {
			return nil, err
		}
		return callResolver(ctx, func(ctx context.Context) (any, error) {
			return e.resolvers.Mutation().EditAuthor(ctx, name, setBornTo)
		})
	}

	return nil, fmt.Errorf("unknown field Mutation.%s", field.Name)
}

func (e *executableSchema) resolveAuthorField(ctx context.Context, obj *library.Author, field graphql.CollectedField) (any, error) {
	switch field.Name {
	case "id":
		return obj.ID, nil
	case "name":
		return obj.Name, nil
	case "born":
		return obj.Born, nil
	case "bookCount":
		return callResolver(ctx, func(ctx context.Context) (any, error) {
			return e.resolvers.Author().BookCount(ctx, obj)
		})
	}

	return nil, fmt.Errorf("unknown field Author.%s", field.Name)
}

func resolveBookField(obj *library.Book, field graphql.CollectedField) (any, error) {
	switch field.Name {
	case "id":
		return obj.ID, nil
	case "title":
		return obj.Title, nil
	case "author":
		return obj.Author, nil
	case "published":
		return obj.Published, nil
	case "genres":
		return obj.Genres, nil
	}

	return nil, fmt.Errorf("unknown field Book.%s", field.Name)
}

// isResolverField reports whether a field is computed by a resolver method
// rather than read from the parent object.
func isResolverField(object, field string) bool {
	switch object {
	case "Query":
		return !strings.HasPrefix(field, "__")
	case "Mutation":
		return true
	case "Author":
		return field == "bookCount"
	}
	return false
}

// callResolver runs next through the operation's resolver middleware, which
// is where handler extensions hook into field resolution.
func callResolver(ctx context.Context, next graphql.Resolver) (any, error) {
	opCtx := graphql.GetOperationContext(ctx)
	if opCtx.ResolverMiddleware == nil {
		return next(ctx)
	}
	return opCtx.ResolverMiddleware(ctx, next)
}

// completeValue shapes a resolved value according to typ. A nil slice in a
// non-null list position completes as an empty list.
func (e *executableSchema) completeValue(ctx context.Context, typ *ast.Type, field graphql.CollectedField, v any) (graphql.Marshaler, bool) {
	if typ.Elem != nil && typ.NonNull && isNilSlice(v) {
		return graphql.Array{}, true
	}
	if isNil(v) {
		if typ.NonNull {
			if !graphql.HasFieldError(ctx, graphql.GetFieldContext(ctx)) {
				graphql.AddErrorf(ctx, "must not be null")
			}
			return graphql.Null, false
		}
		return graphql.Null, true
	}

	if typ.Elem != nil {
		return e.completeList(ctx, typ, field, v)
	}

	def := e.schema.Types[typ.NamedType]
	if def == nil {
		graphql.AddErrorf(ctx, "unknown type %s", typ.NamedType)
		return nullFor(typ)
	}

	switch def.Kind {
	case ast.Scalar, ast.Enum:
		m, err := marshalLeaf(v)
		if err != nil {
			graphql.AddError(ctx, err)
			return nullFor(typ)
		}
		return m, true

	case ast.Object:
		m, ok := e.executeSelectionSet(ctx, def, v, field.Selections)
		if !ok {
			return nullFor(typ)
		}
		return m, true
	}

	graphql.AddErrorf(ctx, "cannot complete value of %s type %s", def.Kind, def.Name)
	return nullFor(typ)
}

func (e *executableSchema) completeList(ctx context.Context, typ *ast.Type, field graphql.CollectedField, v any) (graphql.Marshaler, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		graphql.AddErrorf(ctx, "expected a list, got %T", v)
		return nullFor(typ)
	}

	ret := make(graphql.Array, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		index := i
		item := listItem(rv.Index(i))

		itemCtx := graphql.WithFieldContext(ctx, &graphql.FieldContext{
			Index:  &index,
			Result: item,
		})

		m, ok := e.completeValue(itemCtx, typ.Elem, field, item)
		if !ok {
			return nullFor(typ)
		}
		ret[i] = m
	}

	return ret, true
}

// listItem returns a slice element, addressed when it is a struct so that
// pointer-receiver methods stay reachable.
func listItem(v reflect.Value) any {
	if v.Kind() == reflect.Struct && v.CanAddr() {
		return v.Addr().Interface()
	}
	return v.Interface()
}

// nullFor returns null for a field of type typ. The boolean is false when
// the null has to propagate further up because typ is non-null.
func nullFor(typ *ast.Type) (graphql.Marshaler, bool) {
	return graphql.Null, !typ.NonNull
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func isNilSlice(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice && rv.IsNil()
}

// marshalLeaf serializes scalar and enum values.
func marshalLeaf(v any) (graphql.Marshaler, error) {
	if m, ok := v.(graphql.Marshaler); ok {
		return m, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return graphql.Null, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return graphql.MarshalString(rv.String()), nil
	case reflect.Bool:
		return graphql.MarshalBoolean(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return graphql.MarshalInt(int(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return graphql.MarshalInt(int(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return graphql.MarshalFloat(rv.Float()), nil
	}

	return nil, fmt.Errorf("cannot serialize %T as a scalar", v)
}

// orderedObject marshals selected fields in selection order.
type orderedObject struct {
	keys   []string
	values []graphql.Marshaler
}

func (o *orderedObject) add(key string, value graphql.Marshaler) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
}

func (o *orderedObject) MarshalGQL(w io.Writer) {
	io.WriteString(w, "{")
	for i, key := range o.keys {
		if i > 0 {
			io.WriteString(w, ",")
		}
		graphql.MarshalString(key).MarshalGQL(w)
		io.WriteString(w, ":")
		o.values[i].MarshalGQL(w)
	}
	io.WriteString(w, "}")
}
