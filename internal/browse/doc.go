// Package browse holds the character list controller: a debounced,
// paginated search whose state is only ever changed by the latest request.
// It also provides the detail view loader and the pure helpers the list
// screen needs (page window, status tags).
package browse
