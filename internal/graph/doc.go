// Package graph converts a workflow definition into the adjacency
// representation the engine schedules against: downstream lists plus an
// in-degree count per node. Build rejects malformed definitions (dangling
// edges, cycles) before any node runs.
//
// Build is a pure function: it never mutates the workflow and is
// deterministic for a given definition.
package graph
