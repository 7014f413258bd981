package storage

import "strings"

// IpfsPrefix is the URI scheme prefix used for stored content.
const IpfsPrefix = "ipfs://"

// CIDString strips the ipfs:// scheme from url. Only the first occurrence is
// replaced and the remainder is not validated.
func CIDString(url string) string {
	return strings.Replace(url, IpfsPrefix, "", 1)
}

// FromCID returns the ipfs:// URL for a CID string.
func FromCID(c string) string {
	return IpfsPrefix + c
}

// GatewayURL rewrites an ipfs:// URL into an HTTP link under gateway,
// e.g. "https://ipfs.infura.io/ipfs/".
func GatewayURL(ipfsURL, gateway string) string {
	return strings.Replace(ipfsURL, IpfsPrefix, gateway, 1)
}

// FromGatewayURL is the inverse of GatewayURL.
func FromGatewayURL(httpURL, gateway string) string {
	return strings.Replace(httpURL, gateway, IpfsPrefix, 1)
}
