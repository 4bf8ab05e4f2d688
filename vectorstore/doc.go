// Package vectorstore defines the vector index boundary: an upsert/query
// contract over document vectors with attached payloads.
//
// The index's internal search algorithm is treated as a remote service
// concern. Implementations:
//
//   - vectorstore/qdrant: REST client for a Qdrant collection
//   - vectorstore/memory: in-process cosine index for tests
package vectorstore
