// Package storage provides access to a remote IPFS pinning service through
// its Kubo-compatible HTTP RPC API.
//
// The remote service owns content addressing and pin bookkeeping; this
// package only issues "add", "pin/add", "pin/rm", "pin/ls" and "cat" calls
// and turns the answers into Go values.
//
// # Storage Client
//
// A Client is built once by the caller and passed to whatever needs it:
//
//	client, err := storage.NewClient(config.IPFS{
//		APIURL:        "https://ipfs.infura.io:5001",
//		ProjectID:     "YOUR_PROJECT_ID",
//		ProjectSecret: "YOUR_PROJECT_SECRET",
//		GatewayURL:    "https://ipfs.infura.io/ipfs/",
//	}, logger)
//
// ProjectID and ProjectSecret are sent as a Basic authorization header on
// every RPC request (see BasicAuth).
//
// # Adding Content
//
//	uri, err := client.AddBytes(ctx, data)           // ipfs://Qm...
//	uri, err := client.UploadJSON(ctx, metadata)     // JSON-encoded first
//	uri, err := client.AddURL(ctx, "https://...")    // streamed from a web source
//	uri, err := client.AddFile(ctx, "./cat.png")      // local regular file
//
// Added content is pinned by the node.
//
// # Pins
//
//	id, err := client.Pin(ctx, "ipfs://bafy...")
//	id, err := client.Unpin(ctx, "ipfs://bafy...")
//
//	for pin, err := range client.Pins(ctx, model.PinRecursive) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(pin.CID, pin.Type)
//	}
//
// Pins is lazy: the request is sent when iteration starts and the response
// is closed when the loop ends. Formatting pins for humans lives in the
// display package.
//
// References accepted by Pin, Unpin and Cat may be bare CIDs, ipfs:// URLs or
// links under the configured gateway; they are parsed with go-cid before any
// request is made.
//
// # URL Schemes
//
// CIDString, FromCID, GatewayURL and FromGatewayURL convert between the
// ipfs:// form stored by callers and HTTP gateway links. They are plain
// string substitutions:
//
//	storage.GatewayURL("ipfs://QmHash", "https://ipfs.infura.io/ipfs/")
//	// https://ipfs.infura.io/ipfs/QmHash
//
// # Reading Content
//
// Cat reads through the RPC API; content under a raw-codec CID is re-hashed
// and rejected with ErrContentMismatch when it does not match. ReadFile also
// accepts gateway links and fetches them with GetGatewayFile.
package storage
