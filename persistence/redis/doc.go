// Package redis provides a Redis-backed implementation of the stackmate
// transaction log store.
//
// The store persists the recent-transaction list so it survives process
// restarts, mirroring the single-blob layout the web client keeps in browser
// local storage: one Redis key per namespace holding a JSON array of records,
// newest first.
//
// # Basic Usage
//
//	import (
//	    "github.com/redis/go-redis/v9"
//	    stackmate "github.com/Anthonyushie/Stackmate-sub000"
//	    redisstore "github.com/Anthonyushie/Stackmate-sub000/persistence/redis"
//	)
//
//	client := redis.NewClient(&redis.Options{
//	    Addr: "localhost:6379",
//	})
//
//	store := redisstore.NewLogStore(client)
//	log := stackmate.NewTxLog(ctx, store)
//
// # Multi-Tenant Usage
//
// Use key prefixes to isolate data for different environments:
//
//	prodStore := redisstore.NewLogStore(client, redisstore.WithLogStoreKeyPrefix("prod"))
//	testStore := redisstore.NewLogStore(client, redisstore.WithLogStoreKeyPrefix("test"))
//
// # Redis Key Structure
//
//   - stackmate:recent-txs - the full record list (JSON array)
//
// # Thread Safety
//
// The store is thread-safe; TxLog serializes writes, and Redis handles the
// underlying concurrency control.
//
// # Supported Redis Configurations
//
// The store works with standalone Redis, Redis Sentinel, and Redis Cluster.
// Pass the appropriate redis.UniversalClient implementation to NewLogStore.
package redis
