// Package journal records the calls the gateway makes to upstream MCP
// services: which route triggered them, which tool was invoked, how long
// it took, and whether it failed.
//
// Entries are written asynchronously by a Recorder so a slow disk never
// delays a forwarded request; when the queue is full entries are dropped
// and counted. Backends live in journal/storage and retention in
// journal/retention.
package journal
