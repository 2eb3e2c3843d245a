// Package resthttp implements the source fetcher for external tabular
// endpoints reached over HTTP. The endpoint may answer with a raw JSON
// array of row objects or with a {status, message, data} envelope; an
// explicit error envelope is a failure even under a 2xx transport
// status, and so is an empty dataset.
package resthttp
