// Package store provides identity persistence implementations. The Store
// interface itself is declared next to the domain types in package
// identity so services there can depend on it without importing this
// package; the aliases below keep call sites readable.
package store

import "trustlayer/internal/identity"

// Store is the persistence contract implemented by this package.
type Store = identity.Store

// ErrNotFound reports a missing identity record.
var ErrNotFound = identity.ErrNotFound
