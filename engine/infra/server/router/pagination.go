package router

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/compozy/defaultdesk/engine/core"
	"github.com/gin-gonic/gin"
)

const (
	fallbackPageSize = 50
	fallbackMaxPage  = 200
)

// LimitOrDefault returns a sanitized page size. Missing or non-positive
// values take def; values above maxLimit are capped.
func LimitOrDefault(raw string, def int, maxLimit int) int {
	if def <= 0 {
		def = fallbackPageSize
	}
	if maxLimit <= 0 {
		maxLimit = fallbackMaxPage
	}
	val, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || val <= 0 {
		return min(def, maxLimit)
	}
	return min(val, maxLimit)
}

// OffsetParam parses ?offset=. Anything that is not a non-negative integer
// is a bad request.
func OffsetParam(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("offset"))
	if raw == "" {
		return 0, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return 0, core.BadRequest(fmt.Errorf("invalid offset %q", raw))
	}
	return val, nil
}

// SetLinkHeaders advertises neighbouring pages. A full page implies there may
// be a next one.
func SetLinkHeaders(c *gin.Context, limit, offset, returned int) {
	links := make([]string, 0, 2)
	if limit > 0 && returned >= limit {
		links = append(links, buildLink(c, offset+limit, limit, "next"))
	}
	if offset > 0 {
		links = append(links, buildLink(c, max(offset-limit, 0), limit, "prev"))
	}
	if len(links) > 0 {
		c.Header("Link", strings.Join(links, ", "))
	}
}

func buildLink(c *gin.Context, offset, limit int, rel string) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return fmt.Sprintf("<%s>; rel=%q", sanitizedURL(&u), rel)
}

func sanitizedURL(u *url.URL) string {
	if u.Scheme == "" && u.Host == "" {
		if u.RawQuery == "" {
			return u.Path
		}
		return u.Path + "?" + u.RawQuery
	}
	return u.String()
}
