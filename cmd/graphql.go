package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/executor"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"golang.org/x/term"

	"github.com/hmans/shelf/internal/graph"
	"github.com/hmans/shelf/internal/log"
)

var (
	queryJSON       bool
	queryVariables  string
	queryOperation  string
	querySchemaOnly bool
)

var graphqlCmd = &cobra.Command{
	Use:     "graphql <query>",
	Aliases: []string{"query", "q"},
	Short:   "Execute a GraphQL query or mutation",
	Long: heredoc.Doc(`
		Execute a GraphQL query or mutation against a freshly seeded store.

		The argument should be a valid GraphQL query or mutation string.
		Mutations only affect this invocation; nothing is persisted.

		Examples:
		  # List all books
		  shelf graphql '{ allBooks { title author } }'

		  # Filter books by author and genre
		  shelf graphql '{ allBooks(author: "Robert Martin", genre: "refactoring") { title } }'

		  # Authors with derived book counts
		  shelf graphql '{ allAuthors { name born bookCount } }'

		  # Use variables
		  shelf graphql -v '{"text": "patterns"}' 'query Find($text: String!) { searchBooks(text: $text) { title } }'

		  # Read from stdin (useful for complex queries or escaping issues)
		  cat query.graphql | shelf graphql

		  # Print the schema
		  shelf graphql --schema
	`),
	Args: func(cmd *cobra.Command, args []string) error {
		if querySchemaOnly {
			return nil
		}
		if len(args) > 1 {
			return fmt.Errorf("accepts at most 1 argument (the GraphQL query)")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if querySchemaOnly {
			fmt.Fprint(out, GetGraphQLSchema())
			return nil
		}

		var query string
		if len(args) == 1 {
			query = args[0]
		} else {
			stdinQuery, err := readQuery(os.Stdin)
			if err != nil {
				return err
			}
			if stdinQuery == "" {
				return fmt.Errorf("no query provided (pass as argument or pipe to stdin)")
			}
			query = stdinQuery
		}

		var variables map[string]any
		if queryVariables != "" {
			if err := json.Unmarshal([]byte(queryVariables), &variables); err != nil {
				return fmt.Errorf("invalid variables JSON: %w", err)
			}
		}

		result, err := executeQuery(query, variables, queryOperation)
		if err != nil {
			return err
		}

		if queryJSON {
			fmt.Fprintln(out, string(result))
		} else {
			prettyPrint(out, result, isTerminal(os.Stdout))
		}

		return nil
	},
}

// readQuery reads the query from f unless f is an interactive terminal.
func readQuery(f *os.File) (string, error) {
	if isTerminal(f) {
		return "", nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// executeQuery runs query in-process with introspection enabled and returns
// the response's data. Any parse, validation or field error fails the call.
func executeQuery(query string, variables map[string]any, operationName string) ([]byte, error) {
	es := graph.NewExecutableSchema(graph.Config{
		Resolvers: &graph.Resolver{Core: core},
	})

	exec := executor.New(es)
	exec.Use(extension.Introspection{})

	ctx := log.WithLogger(context.Background(), logger)
	ctx = graphql.StartOperationTrace(ctx)
	params := &graphql.RawParams{
		Query:         query,
		Variables:     variables,
		OperationName: operationName,
	}

	opCtx, errs := exec.CreateOperationContext(ctx, params)
	if errs != nil {
		return nil, formatGraphQLErrors(errs)
	}

	ctx = graphql.WithOperationContext(ctx, opCtx)
	handler, ctx := exec.DispatchOperation(ctx, opCtx)
	resp := handler(ctx)

	if len(resp.Errors) > 0 {
		return nil, formatGraphQLErrors(resp.Errors)
	}

	return resp.Data, nil
}

// formatGraphQLErrors joins errs into one error, one message per line.
func formatGraphQLErrors(errs gqlerror.List) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return fmt.Errorf("graphql: %s", errs[0].Message)
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return fmt.Errorf("graphql errors:\n  %s", strings.Join(msgs, "\n  "))
}

// prettyPrint writes the JSON indented, and colored when color is set.
func prettyPrint(w io.Writer, data []byte, color bool) {
	formatted := pretty.Pretty(data)
	if color {
		formatted = pretty.Color(formatted, nil)
	}
	fmt.Fprint(w, string(formatted))
}

// GetGraphQLSchema returns the GraphQL schema as a string.
func GetGraphQLSchema() string {
	es := graph.NewExecutableSchema(graph.Config{})

	var buf bytes.Buffer
	f := formatter.NewFormatter(&buf, formatter.WithIndent("  "))
	f.FormatSchema(es.Schema())

	return buf.String()
}

func init() {
	graphqlCmd.Flags().BoolVar(&queryJSON, "json", false, "Output raw JSON (no formatting)")
	graphqlCmd.Flags().StringVarP(&queryVariables, "variables", "v", "", "Query variables as JSON string")
	graphqlCmd.Flags().StringVarP(&queryOperation, "operation", "o", "", "Operation name (for multi-operation documents)")
	graphqlCmd.Flags().BoolVar(&querySchemaOnly, "schema", false, "Print the GraphQL schema and exit")
	rootCmd.AddCommand(graphqlCmd)
}
