// Package sanitizer normalizes user input before validation and storage.
//
// All normalization functions are idempotent. Invalid input yields an empty
// string or an empty slice rather than an error, and callers decide whether
// an empty result is a validation failure.
//
// Normalization includes:
//   - Phone numbers: E.164, parsed against a default region
//   - URLs: HTTPS scheme, lowercase host, no trailing slash
//   - Names and free text: collapsed whitespace, trimmed
//   - Search terms: collapsed whitespace, lowercase
//   - Expertise lists: comma separated tags, trimmed and de-duplicated
package sanitizer
