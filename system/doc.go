/*
Package system manages the startup, running, metrics and shutdown of the server.

The server runs a few things in the background (the API and admin HTTP servers, the
metrics loop and the signal handler) and must shut down cleanly when told to, waiting a
little before closing listeners so in flight requests and their access log lines complete.
*/
package system
