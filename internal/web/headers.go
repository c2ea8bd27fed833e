package web

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// SetAlertHeaders attaches the informational alert headers carried by
// every successful write response.
func SetAlertHeaders(c *gin.Context, appName, alert, param string) {
	c.Header("X-"+appName+"-alert", alert)
	c.Header("X-"+appName+"-params", param)
}

// SetPaginationHeaders attaches X-Total-Count and a Link header built
// from the request path. Page is zero-based; the last page is derived
// from the total reported by the count query, which runs independently
// of the page fetch.
func SetPaginationHeaders(c *gin.Context, page, size int, total int64) {
	c.Header("X-Total-Count", strconv.FormatInt(total, 10))

	totalPages := int((total + int64(size) - 1) / int64(size))
	lastPage := totalPages - 1
	if lastPage < 0 {
		lastPage = 0
	}

	path := c.Request.URL.Path
	var links []string
	if page < lastPage {
		links = append(links, pageLink(path, page+1, size, "next"))
	}
	if page > 0 {
		links = append(links, pageLink(path, page-1, size, "prev"))
	}
	links = append(links,
		pageLink(path, lastPage, size, "last"),
		pageLink(path, 0, size, "first"),
	)
	c.Header("Link", strings.Join(links, ","))
}

func pageLink(path string, page, size int, rel string) string {
	return fmt.Sprintf(`<%s?page=%d&size=%d>; rel="%s"`, path, page, size, rel)
}
