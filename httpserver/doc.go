/*
Package httpserver runs the API and admin HTTP servers with connection tracking and
graceful shutdown.
*/
package httpserver
