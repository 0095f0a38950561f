/*
Package accesslog writes one line per completed HTTP exchange.

The line records the method, URL, response time, status and size, and ends with a token
comparing the request's If-None-Match header with the response's ETag:

	GET /hello 0.274ms 304 ∅ both=W/"c-00hq6RNueFa8QiEjhep5cJRHWAI"
	GET /hello 1.913ms 200 12 ∅<>W/"c-00hq6RNueFa8QiEjhep5cJRHWAI"

Lines are appended to a Sink, usually log/access.log. A shorter coloured summary in the
style of a development console can be written alongside.
*/
package accesslog
