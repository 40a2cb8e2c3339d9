// Package html provides a Normaliser implementation for HTML documents.
// It extracts readable text from the main content of a page; each top-level
// <section> becomes its own page.
package html
