// Package config provides configuration management for pinkit.
//
// # Basic Configuration
//
// An empty Config is valid: Validate points it at the Infura endpoints and
// applies the default retry bounds.
//
//	cfg := &config.Config{
//		IPFS: config.IPFS{
//			ProjectID:     "YOUR_PROJECT_ID",
//			ProjectSecret: "YOUR_PROJECT_SECRET",
//		},
//	}
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// # Defaults
//
//	IPFS.APIURL:       "https://ipfs.infura.io:5001"
//	IPFS.GatewayURL:   "https://ipfs.infura.io/ipfs/" (a trailing slash is always added)
//	IPFS.Timeout:      60s
//	Retry.MaxAttempts: 3
//	Retry.Delay:       2s (only when absent; an explicit 0s is kept)
//
// A negative Retry.MaxAttempts is kept as is and makes every outbound fetch
// fail immediately, which is handy for dry runs.
//
// # Credentials
//
// ProjectID and ProjectSecret are joined into a Basic authorization header by
// the storage package. They must be set together or not at all. The
// forwarder AuthToken is the HMAC secret used to sign webhook bodies and is
// required whenever Forwarder.URL is set.
//
// # YAML Files
//
// Load reads a YAML document and rejects unknown keys:
//
//	ipfs:
//	  api_url: https://ipfs.infura.io:5001
//	  project_id: YOUR_PROJECT_ID
//	  project_secret: YOUR_PROJECT_SECRET
//	  gateway_url: https://ipfs.infura.io/ipfs/
//	  timeout: 60s
//	forwarder:
//	  url: https://events.example.com/update-image
//	  auth_token: YOUR_FORWARDER_TOKEN
//	retry:
//	  max_attempts: 3
//	  delay: 2s
//	debug: false
//
// Durations use Go syntax ("500ms", "2s", "1m").
package config
