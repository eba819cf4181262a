// Package integration contains the Integration bounded context.
// This context describes how the service talks to the remote commerce platform's
// GraphQL Admin API.
//
// Key concepts:
//   - QueryExecutor: Port interface for issuing one resilient GraphQL request
//   - Response: The GraphQL envelope (data, errors, extensions.cost)
//   - FailureClass: Classification of one failed attempt (rate limited, server error, ...)
//   - BulkOperationGateway: Port for starting and polling server-side bulk queries
//   - UserErrorsError: Mutation-level validation failures returned inside a 2xx response
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
