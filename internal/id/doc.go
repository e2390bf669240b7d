// Package id provides unique identifier generation utilities.
//
// It provides the ID formats used across imposter:
//
//   - UUID: Standard UUID v4, used for request correlation IDs
//   - Record: base62-encoded non-negative integers, the shape of the
//     identifiers returned by the record API when a record is created
//
// Randomness comes from github.com/google/uuid, which reads crypto/rand.
package id
