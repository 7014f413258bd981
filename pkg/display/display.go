// Package display renders pins and wallet addresses for terminal output.
package display

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shamank/pinkit/pkg/model"
	"github.com/shamank/pinkit/pkg/storage"
)

// minTruncateLen is the shortest address that is worth shortening; anything
// shorter would not lose characters to the ellipsis.
const minTruncateLen = 11

// PinLine returns the clickable gateway link of p.
func PinLine(p model.Pin, gateway string) string {
	return storage.GatewayURL(storage.FromCID(p.CID.String()), gateway)
}

// WritePins writes one gateway link per pin to w and returns how many lines
// were written. The first error from the sequence or from w stops the
// listing and is returned.
func WritePins(w io.Writer, pins iter.Seq2[model.Pin, error], gateway string) (int, error) {
	n := 0
	for p, err := range pins {
		if err != nil {
			return n, err
		}
		if _, err := fmt.Fprintln(w, PinLine(p, gateway)); err != nil {
			return n, fmt.Errorf("failed to write pin %s: %w", p.CID, err)
		}
		n++
	}
	return n, nil
}

// TruncateAddress shortens a 0x-prefixed address to its first and last four
// characters, e.g. 0x5a...bEeF. Valid Ethereum addresses are checksummed
// first. Other strings are returned unchanged.
func TruncateAddress(addr string) string {
	if !strings.HasPrefix(addr, "0x") {
		return addr
	}
	if common.IsHexAddress(addr) {
		addr = common.HexToAddress(addr).Hex()
	}
	if len(addr) < minTruncateLen {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}
