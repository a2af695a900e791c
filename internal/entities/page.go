package entities

// DefaultPageSize is used by list endpoints when no size is requested.
const DefaultPageSize = 20

// MaxPageSize caps the size accepted by list endpoints.
const MaxPageSize = 100

// Page is one slice of a cursor paginated list.
type Page[T any] struct {
	Items      []T    `json:"items"`
	Size       int    `json:"size"`
	HasNext    bool   `json:"hasNext"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// PageRequest carries the cursor parameters of a list call.
type PageRequest struct {
	Size   int
	Cursor string
}
