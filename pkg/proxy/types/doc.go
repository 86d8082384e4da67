// Package types defines the JSON bodies the gateway writes that are not
// relayed from an upstream: error envelopes, health and status responses.
//
// Forwarding routes embed upstream results as json.RawMessage so the
// upstream bytes reach the client unchanged; their envelopes are built in
// the handlers package.
package types
