package middlewares

import (
	"bytes"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eventapi/utils"
)

type cachedBody struct {
	Status int
	Header map[string][]string
	Body   []byte
}

// sha1 keeps list keys short whatever the query string looks like
func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// CacheKeyFrom returns the redis key for a cacheable GET, or "" when the
// request must not be cached. Item keys keep the raw id so one event can be
// purged without touching the others.
func CacheKeyFrom(c *gin.Context) string {
	path := c.FullPath()
	if c.Request.Method != "GET" || path == "" {
		return ""
	}

	switch {
	case strings.HasSuffix(path, "/events/:id"):
		return utils.EventsItemKeyPrefix + c.Param("id")
	case strings.HasSuffix(path, "/events"):
		return utils.EventsListKeyPrefix + sha1Hex(c.Request.URL.RawQuery)
	default:
		return "cache:generic:" + sha1Hex(path+"|"+c.Request.URL.RawQuery)
	}
}

// ResponseCache serves 2xx GET responses from redis and marks them with
// X-Cache: HIT or MISS. Redis errors fall through to the handler.
func ResponseCache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := CacheKeyFrom(c)
		if key == "" {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		if b, err := rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
			var hit cachedBody
			if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&hit); err == nil {
				for k, vals := range hit.Header {
					for _, v := range vals {
						c.Writer.Header().Add(k, v)
					}
				}
				c.Writer.Header().Set("X-Cache", "HIT")
				c.Status(hit.Status)
				_, _ = c.Writer.Write(hit.Body)
				c.Abort()
				return
			}
		}

		buf := &bytes.Buffer{}
		bw := &bufferedWriter{ResponseWriter: c.Writer, buf: buf}
		c.Writer = bw
		// headers are flushed on the first body write, so MISS has to be set now
		c.Writer.Header().Set("X-Cache", "MISS")

		c.Next()

		if bw.Status() >= 200 && bw.Status() < 300 {
			header := map[string][]string{}
			for k, v := range c.Writer.Header() {
				if k == "X-Cache" {
					continue
				}
				header[k] = v
			}
			item := cachedBody{
				Status: bw.Status(),
				Header: header,
				Body:   buf.Bytes(),
			}
			var o bytes.Buffer
			if err := gob.NewEncoder(&o).Encode(item); err == nil {
				_ = rdb.Set(ctx, key, o.Bytes(), ttl).Err()
			}
		}
	}
}

type bufferedWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}
