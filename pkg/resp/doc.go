// Package resp implements the tagged-value wire format spoken between
// RediSharp servers and clients.
//
// Every value is a type tag byte followed by a CRLF-terminated header and,
// for aggregates and bulk strings, a declared amount of payload:
//
//	+OK\r\n                  simple string
//	-Unknown command\r\n     simple error
//	$5\r\nhello\r\n          bulk string (length in bytes)
//	_\r\n                    null
//	:42\r\n                  integer
//	#t\r\n                   boolean
//	*2\r\n...                array of 2 values
//	%1\r\n...                map of 1 key/value pair
//
// Decoding peeks the tag before consuming anything and enforces canonical
// decimal headers, so any value produced by Decode re-encodes to exactly
// the bytes it was read from.
//
// The package has no notion of commands; it only moves typed values
// across a byte stream.
package resp
