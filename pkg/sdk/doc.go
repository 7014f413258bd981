// Package sdk is the entry point of pinkit. It builds every client from a
// single config.Config and hands them out.
//
// # Quick Start
//
//	cfg := &config.Config{
//		IPFS: config.IPFS{
//			ProjectID:     "YOUR_PROJECT_ID",
//			ProjectSecret: "YOUR_PROJECT_SECRET",
//		},
//		Forwarder: config.Forwarder{
//			URL:       "https://events.example.com/image",
//			AuthToken: "YOUR_FORWARDER_TOKEN",
//		},
//	}
//
//	core, err := sdk.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer core.Close()
//
//	pub, err := core.PublishImage(ctx, "https://example.com/cat.png")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(pub.GatewayURL)
//
// # Components
//
//   - Storage: add, pin, unpin, list and read content on the IPFS node
//   - Fetcher: JSON requests with a bounded number of attempts and a fixed delay
//   - Forwarder: HMAC-signed notifications to the event forwarder webhook
//   - Events: structured analytics entries
//
// A Core is safe for concurrent use. Call Close when done to flush the logger.
package sdk
