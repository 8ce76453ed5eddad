/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package crpt provides a client for the document creation endpoint of the "Chestny ZNAK" (CRPT) API.
//
// All requests of a Client go through a shared rate limiter, so the client never exceeds
// the configured number of requests per period. Callers over the budget are queued, not rejected:
//
//	client, err := crpt.New(time.Second, 10)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	resp, err := client.CreateDocument(ctx, doc, token)
//
// The response is returned as is; interpreting the status code and the body is up to the caller.
package crpt
