// SPDX-License-Identifier: MIT

// Package blob stores raw and derived instrument files in named
// containers. Containers follow the layout
// <instrument>/<stage>/<year>/<name>, with one container per
// observatory.
package blob

import (
	"context"
	"errors"
)

// ErrNoContainer reports an operation against a container that was
// never created.
var ErrNoContainer = errors.New("container not found")

// ErrNoBlob reports a read of a name the container does not hold.
var ErrNoBlob = errors.New("blob not found")

// Access is the storage surface the pipeline works against.
type Access interface {
	// CreateContainer registers a container. Creating an existing
	// container is not an error.
	CreateContainer(ctx context.Context, name string) error
	// Put writes a blob, overwriting any previous content.
	Put(ctx context.Context, container, name string, data []byte) error
	// Get reads a blob's content.
	Get(ctx context.Context, container, name string) ([]byte, error)
	// List returns the sorted names in the container that start with
	// prefix. An empty prefix lists everything.
	List(ctx context.Context, container, prefix string) ([]string, error)
	// Delete removes a blob. Deleting an absent blob is not an error.
	Delete(ctx context.Context, container, name string) error
}
