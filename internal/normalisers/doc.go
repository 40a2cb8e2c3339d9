// Package normalisers provides implementations of the Normaliser interface
// for the uploadable document formats. Each normaliser knows how to extract
// ordered plain-text pages from one file format.
//
// Normalisers are registered with the Registry at startup; the loader picks
// one by filename extension.
package normalisers
