// Package model defines the data exchanged with the IPFS RPC API and with the
// event forwarder: pin records, add results and webhook payloads.
package model

import (
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
)

// PinType is the kind of pin reported by the storage node.
type PinType string

const (
	// PinDirect pins only the root block.
	PinDirect PinType = "direct"
	// PinRecursive pins the root and every block it references.
	PinRecursive PinType = "recursive"
	// PinIndirect marks blocks kept alive by a recursive pin on an ancestor.
	PinIndirect PinType = "indirect"
)

// ParsePinType maps the type string returned by `pin/ls` onto a PinType.
// Kubo reports indirect pins as "indirect through <cid>"; the suffix is dropped.
func ParsePinType(s string) (PinType, error) {
	switch t := PinType(s); {
	case t == PinDirect, t == PinRecursive, t == PinIndirect:
		return t, nil
	case strings.HasPrefix(s, string(PinIndirect)+" "):
		return PinIndirect, nil
	default:
		return "", fmt.Errorf("unknown pin type %q", s)
	}
}

// String implements fmt.Stringer.
func (t PinType) String() string { return string(t) }

// Pin is a single record of the pin listing. It carries only the fields
// consumers actually use: the content identifier and the pin type.
type Pin struct {
	CID  cid.Cid
	Type PinType
	// Name is the optional pin label; most pinning services leave it empty.
	Name string
}

// AddResult mirrors the JSON object emitted by the `add` command.
// Size is reported as a decimal string by Kubo.
type AddResult struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size,omitempty"`
}

// ImageUpdate is the body posted to the event forwarder after new content
// has been stored.
type ImageUpdate struct {
	IPFSURL string `json:"ipfsUrl"`
}
