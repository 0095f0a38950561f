package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/circleci/etag-demo/o11y"
)

// timeLayout is close to the string form of a JavaScript Date, with the zone
// abbreviation in place of its long name.
const timeLayout = "Mon Jan 02 2006 15:04:05 GMT-0700 (MST)"

func notFound(c *gin.Context) {
	c.String(http.StatusNotFound, "404 page not found")
}

func (a *API) getHello(c *gin.Context) {
	a.send(c, a.greeting)
}

func (a *API) getTime(c *gin.Context) {
	a.send(c, a.now().Format(timeLayout))
}

// getRandom sends a number drawn uniformly from [1, randomMax].
func (a *API) getRandom(c *gin.Context) {
	n := a.rand(a.randomMax) + 1
	o11y.AddField(c.Request.Context(), "random", n)
	a.send(c, strconv.Itoa(n))
}

func (a *API) getIsNumber(c *gin.Context) {
	value := c.Param("value")
	if isNumber(value) {
		a.send(c, value+" is a number")
		return
	}
	a.send(c, value+" is not a number")
}
