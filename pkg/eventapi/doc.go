// Package eventapi applies live paint events to a registry.
//
// A Client holds a WebSocket connection to the event stream, subscribes to
// the cosmetic and entitlement event types, and routes each dispatch:
//
//	cosmetic.create     body.object                  -> AddKnownPaint
//	entitlement.create  body.paint_id, body.username -> Assign
//	entitlement.delete  body.paint_id, body.username -> Clear
//
// Frames that do not decode, and event types the client does not know, are
// logged and skipped; the connection stays up. Run reconnects with capped
// exponential backoff until its context is cancelled.
package eventapi
