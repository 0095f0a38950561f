package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/circleci/etag-demo/etag"
)

const contentType = "text/html; charset=utf-8"

// send writes body with its weak tag, or 304 with no body when the client already holds it.
func (a *API) send(c *gin.Context, body string) {
	b := []byte(body)
	tag := a.tag(b)

	c.Header("ETag", tag)
	if etag.Fresh(c.Request.Header, tag) {
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("Content-Length", strconv.Itoa(len(b)))
	c.Data(http.StatusOK, contentType, b)
}

func (a *API) tag(b []byte) string {
	if a.tags == nil {
		return etag.Weak(b)
	}
	return a.tags.Tag(b)
}
