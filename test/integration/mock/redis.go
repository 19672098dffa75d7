package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var redisConnOnce sync.Once
var redisServer *miniredis.Miniredis
var redisConn *redis.Client

// NewRedis returns a client for a process-wide in-memory Redis. Wallet locks
// taken by the ledger land here.
func NewRedis() *redis.Client {
	redisConnOnce.Do(
		func() {
			redisServer, redisConn = openRedisConn()
		},
	)

	return redisConn
}

func openRedisConn() (*miniredis.Miniredis, *redis.Client) {
	server, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	conn := redis.NewClient(
		&redis.Options{
			Addr: server.Addr(),
		},
	)

	return server, conn
}

func ClearRedis(conn *redis.Client) error {
	return conn.FlushAll(context.TODO()).Err()
}

// RedisKeys lists the stored keys starting with prefix, e.g. to assert that
// no wallet lock outlived its request.
func RedisKeys(prefix string) []string {
	if redisServer == nil {
		return nil
	}
	keys := []string{}
	for _, key := range redisServer.Keys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}
