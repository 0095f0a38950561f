// Package api serves the demo routes. Every body is sent with a weak entity tag so that
// repeat requests carrying If-None-Match are answered with 304 Not Modified.
package api

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/circleci/etag-demo/etag"
	"github.com/circleci/etag-demo/httpserver/ginrouter"
)

const (
	DefaultGreeting  = "Hello world!"
	DefaultRandomMax = 20
)

type API struct {
	router *gin.Engine

	greeting  string
	randomMax int
	rand      func(n int) int
	now       func() time.Time
	tags      *etag.Cache
}

type Options struct {
	// Greeting is the body of / and /hello.
	Greeting string
	// RandomMax is the inclusive upper bound of /random.
	RandomMax int

	// Middleware runs for every route, after tracing and panic recovery.
	Middleware []gin.HandlerFunc

	// Tags memoises the tags of sent bodies, nil hashes every body.
	Tags *etag.Cache

	// Rand returns an integer in [0, n), defaults to math/rand.
	Rand func(n int) int
	// Now defaults to time.Now.
	Now func() time.Time
}

func New(ctx context.Context, opts Options) *API {
	if opts.Greeting == "" {
		opts.Greeting = DefaultGreeting
	}
	if opts.RandomMax <= 0 {
		opts.RandomMax = DefaultRandomMax
	}
	if opts.Rand == nil {
		opts.Rand = rand.Intn //nolint:gosec // not security sensitive
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := ginrouter.Default(ctx, "api")
	r.Use(opts.Middleware...)

	a := &API{
		router:    r,
		greeting:  opts.Greeting,
		randomMax: opts.RandomMax,
		rand:      opts.Rand,
		now:       opts.Now,
		tags:      opts.Tags,
	}

	r.GET("/", a.getHello)
	r.GET("/hello", a.getHello)
	r.GET("/time", a.getTime)
	r.GET("/random", a.getRandom)
	r.GET("/isNumber/:value", a.getIsNumber)
	// gin writes its own 404 body after the middleware has returned, so write it in the chain
	r.NoRoute(notFound)

	return a
}

func (a *API) Handler() http.Handler {
	return a.router
}
