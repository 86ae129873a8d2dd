// Package fetch resolves remote dataset objects into verified local files.
// A Client combines a content registry (name -> sha256 -> URL), a shared HTTP
// client, and the disk cache from internal/cache: Fetch looks a file name up
// in the registry and Retrieve downloads an explicitly addressed object,
// verifying the SHA-256 digest at the write barrier so a corrupted transfer
// never lands in the cache. Repeated calls for an already cached, digest-clean
// file are local no-ops. Optional processors (such as Decompress) run after
// retrieval and map the cached entry to a derived one inside the same store.
// The package performs no retries and no concurrent downloads; callers own
// any parallelism across distinct files.
package fetch
