package graph

import "github.com/hmans/shelf/internal/librarycore"

// Resolver is the root resolver for the GraphQL schema.
// It holds a reference to librarycore.Core for data access.
type Resolver struct {
	Core *librarycore.Core
}
