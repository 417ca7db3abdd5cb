// Package client contains the client-side plumbing shared by the backend
// adapters.
//
// # Overview
//
//  1. Dial opens the gRPC connection to the rentable backend with the JSON
//     codec and the caller's unary interceptors (token injection, refresh).
//  2. MapError turns gRPC status errors into values the adapters surface:
//     transport failures wrap ErrUnavailable, everything else becomes an
//     *APIError carrying the backend's message text unchanged.
//  3. InitDatabase and RunMigrations bootstrap the local SQLite database in
//     which the identity client keeps its session.
//
// All operations accept context.Context and honour cancellation.
package client
