// Package crawler holds the domain types shared by the sofifa pipelines: the
// identifier and detail records, the fetcher and sink contracts, and the error
// classes the pipelines report.
package crawler
