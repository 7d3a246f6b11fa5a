// Package rowcache is a key-value cache that keeps its entries as rows in a
// relational table instead of process memory, trading raw latency for
// durability, visibility across processes and plain SQL querying.
//
// Components:
//   - Store: the table abstraction (see store; postgres and sqlite
//     implementations over database/sql are included).
//   - Codec[V]: (de)serializes V <-> []byte (JSON, msgpack, CBOR, protobuf).
//   - Cache[V] / AsyncCache[V]: the blocking and the task-based engine over
//     one shared core.
//
// Rows are namespaced by a partition key; (partition, key) is unique, and a
// write to an existing pair is an atomic upsert - the table's uniqueness
// constraint is the only concurrency control, last committed write wins.
// Expiration is lazy: there is no background sweeper; a dead row reads as
// absent and is reaped best-effort by the read that finds it.
//
// Typical use:
//
//	pg, _ := postgres.Open(connStr, "sessions_cache")
//	cc, _ := rowcache.New[Session](rowcache.Options[Session]{
//	    Store: pg,
//	    Codec: codec.JSON[Session]{},
//	})
//	if err := cc.Init(ctx); err != nil { ... }
//	_ = cc.Set(ctx, "sid:123", sess, time.Hour)
//	sess, ok, err := cc.Get(ctx, "sid:123")
//
// Partitions are explicit views: cc.WithPartition("tenant:42") addresses the
// same table under another namespace. Export/Import move one partition's live
// rows through a versioned snapshot file.
package rowcache
