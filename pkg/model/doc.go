// Package model defines the plain data types shared by the storage, forwarder
// and display packages.
//
// # Pins
//
// Pin is the typed form of one `pin/ls` record:
//
//	type Pin struct {
//		CID  cid.Cid  // content identifier
//		Type PinType  // direct, recursive or indirect
//		Name string   // optional label
//	}
//
// ParsePinType converts the raw strings emitted by Kubo, including the
// "indirect through <cid>" form.
//
// # Add results
//
// AddResult mirrors the JSON object returned by the `add` command. Hash is the
// CID string of the stored content; storage.Client turns it into an ipfs:// URL.
//
// # Webhook payloads
//
// ImageUpdate is the body sent to the event forwarder once content is stored:
//
//	{"ipfsUrl": "ipfs://bafy..."}
package model
