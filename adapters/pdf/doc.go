// Package reportpdf provides server-side PDF rendering for export documents.
//
// It converts standalone HTML into paginated PDFs by driving a shared
// headless Chromium process; each render opens its own page against the one
// browser instance. Engines are pluggable so tests can substitute a fake
// renderer.
package reportpdf
