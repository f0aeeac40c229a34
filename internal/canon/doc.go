// Package canon implements the constrained value model and RFC 8785
// canonical JSON used for persisted participant records.
//
// Canonical bytes make two saves of an unchanged state byte-identical, so
// the store can compare digests instead of decoding.
package canon
