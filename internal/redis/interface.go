package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client wraps redis.UniversalClient to allow for easy mocking in tests.
// The campaign repository is the only consumer; it uses plain key
// operations, sets for the campaign index, and pub/sub for change
// notifications.
type Client interface {
	redis.UniversalClient
}
