// Package content fetches web pages and extracts their readable article
// with go-readability: title, byline, excerpt, site name, cleaned HTML and
// plain text. The fetched page is kept alongside as RawHTML.
package content
