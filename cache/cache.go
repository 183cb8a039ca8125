package cache

import "github.com/redis/go-redis/v9"

type Cache struct {
	*redis.Client
}

// NewFromURL connects using a redis:// url, carrying password and db.
func NewFromURL(u string) (*Cache, error) {
	opts, err := redis.ParseURL(u)
	if err != nil {
		return nil, err
	}
	return &Cache{redis.NewClient(opts)}, nil
}
