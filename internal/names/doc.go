// Package names canonicalizes person display names into comparable keys.
//
// A Normalizer folds case, collapses whitespace, and rewrites each token through
// an immutable nickname table ("bob", "rob" and "robert" all become "robert").
// Token order is preserved; order-insensitive comparison is the scorer's job
// (see textutil.TokenSortRatio).
package names
