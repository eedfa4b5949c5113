// Package audio stores synthesized speech artifacts by reference so turn
// responses can carry a URL instead of inlined bytes.
package audio

import "context"

// Store keeps audio artifacts retrievable for a bounded window.
type Store interface {
	Put(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
}
