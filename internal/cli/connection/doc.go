// Package connection talks to a RediSharp server for redisharp-cli.
//
// Client owns one TCP connection and sends commands as arrays of bulk
// strings. Pool shares Clients between goroutines on top of
// go-commons-pool and drops connections that failed mid-request.
package connection
