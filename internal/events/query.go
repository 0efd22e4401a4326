package events

import "time"

// QueryStart is emitted before a top-level query is run through
// interpreter.RunRoot — the query-execution analogue of the teacher's
// GraphQLStart (internal/events/graphql.go), which fired around a whole
// HTTP-bound GraphQL operation; this engine has no HTTP layer of its own
// (spec.md's non-goals exclude a server), so the span now starts at
// RunRoot's boundary instead of a request handler's.
type QueryStart struct {
	Query         string
	OperationName string
	OperationType string
}

// QueryFinish is emitted after RunRoot (and the completion pass that
// follows it) returns.
type QueryFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
