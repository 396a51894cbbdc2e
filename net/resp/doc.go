// Package resp writes the JSON envelopes returned by every handler.
//
// Successful responses carry the payload as-is; failures carry
//
//	{"code": -404, "message": "board not found"}
//
// with the HTTP status derived from the business code. FromError maps a
// service error to the matching Exception through the ecode taxonomy.
package resp
