// Package core ties uploads, session storage and chart rendering together.
//
// It has no HTTP dependencies; the web handlers and tests drive it through
// [Service].
//
// # Sessions
//
// Each browser session owns at most one dataset. [Service.Upload] stores the
// raw CSV bytes in a [store.Store] under the session ID and keeps the parsed
// [dataset.Dataset] in an LRU cache. [Service.Dataset] always consults the
// store first so that expiry and replacement are honoured, then serves the
// cached parse when it belongs to the same upload.
//
// # Dashboard
//
// [Service.Dashboard] walks the registered chart battery for the configured
// variant:
//
//  1. Charts whose column requirements are unmet are skipped, or show their
//     notice (the heatmap).
//  2. Sidebar selections are resolved from query values such as "bar.x".
//  3. Available charts render concurrently, bounded by RENDER_WORKERS.
//
// A failing chart never fails the page; its section carries the mapped
// error message instead.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - FILE001-FILE006: upload and parse errors
//   - VAL001-VAL003: selection errors
//   - CHART001-CHART004: rendering errors
//   - SES001: no dataset in the session
//   - UPL001-UPL003: busy, cancelled and timed out requests
//   - HIS001: history disabled
//   - RATE001: rate limited
//   - ERR000: anything else
package core
