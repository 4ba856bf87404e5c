// Package catalog loads the bulk paint catalog into a registry.
//
// A Loader fetches the raw body from a Source, decodes the whole
// { "paints": [...] } document, and only then hands the records to
// BulkMerge. A transport error or malformed body abandons the load and
// leaves the registry untouched.
//
// Three sources are provided:
//   - HTTPSource: GET against the catalog endpoint with user_identifier=login
//   - FileSource: a snapshot on disk, optionally reloaded with Watch
//   - S3Source: a snapshot mirrored to an S3 bucket
//
// Example:
//
//	src := catalog.NewHTTPSource(catalog.DefaultURL, nil)
//	ld := catalog.NewLoader(src, reg, catalog.WithRecorder(m))
//	go ld.Run(ctx, 10*time.Minute)
package catalog
