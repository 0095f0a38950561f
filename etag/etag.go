// Package etag generates weak entity tags for response bodies and decides whether a
// request's conditional headers make a cached copy fresh.
package etag

import (
	"crypto/sha1" //nolint:gosec // tag fingerprint, not a security boundary
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

// Weak returns a weak tag for body in the form W/"<length in hex>-<hash>".
func Weak(body []byte) string {
	sum := sha1.Sum(body) //nolint:gosec
	hash := base64.StdEncoding.EncodeToString(sum[:])[:27]
	return `W/"` + strconv.FormatInt(int64(len(body)), 16) + "-" + hash + `"`
}

// Fresh reports whether a client holding the representation tagged tag can be answered
// with 304 Not Modified.
func Fresh(h http.Header, tag string) bool {
	noneMatch := h.Get("If-None-Match")
	if noneMatch == "" {
		return false
	}
	if noCache(h.Get("Cache-Control")) {
		return false
	}
	if strings.TrimSpace(noneMatch) == "*" {
		return true
	}
	if tag == "" {
		return false
	}
	for _, candidate := range strings.Split(noneMatch, ",") {
		if weakEqual(strings.TrimSpace(candidate), tag) {
			return true
		}
	}
	return false
}

func noCache(cacheControl string) bool {
	for _, directive := range strings.Split(cacheControl, ",") {
		if strings.EqualFold(strings.TrimSpace(directive), "no-cache") {
			return true
		}
	}
	return false
}

func weakEqual(a, b string) bool {
	return strings.TrimPrefix(a, "W/") == strings.TrimPrefix(b, "W/")
}

// Cache memoises the tags of recently sent bodies so that unchanged responses are not
// hashed again.
type Cache struct {
	tags *lru.Cache
}

// NewCache returns a cache holding at most size tags.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{tags: c}, nil
}

// Tag returns the weak tag for body, computing it only on a miss.
func (c *Cache) Tag(body []byte) string {
	key := string(body)
	if tag, ok := c.tags.Get(key); ok {
		return tag.(string)
	}
	tag := Weak(body)
	c.tags.Add(key, tag)
	return tag
}

// Len is the number of tags currently held.
func (c *Cache) Len() int {
	return c.tags.Len()
}
