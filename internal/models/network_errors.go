package models

import "strconv"

// NetworkError is the closed set of failures talking to the market data API.
type NetworkError uint8

const (
	NetworkInvalidURL NetworkError = iota
	NetworkRequestFailed
	NetworkBadStatus
	NetworkDecodeFailed
	networkErrorCount
)

var networkDescriptions = [...]string{
	NetworkInvalidURL:    "Invalid URL",
	NetworkRequestFailed: "Failed to reach the server",
	NetworkBadStatus:     "Unexpected response from the server",
	NetworkDecodeFailed:  "Failed to decode the server response",
}

var networkCodes = [...]string{
	NetworkInvalidURL:    "NETWORK_INVALID_URL",
	NetworkRequestFailed: "NETWORK_REQUEST_FAILED",
	NetworkBadStatus:     "NETWORK_BAD_STATUS",
	NetworkDecodeFailed:  "NETWORK_DECODE_FAILED",
}

var (
	_ [0]struct{} = [len(networkDescriptions) - int(networkErrorCount)]struct{}{}
	_ [0]struct{} = [len(networkCodes) - int(networkErrorCount)]struct{}{}
)

// NetworkErrors lists every defined case.
func NetworkErrors() []NetworkError {
	out := make([]NetworkError, 0, networkErrorCount)
	for e := NetworkError(0); e < networkErrorCount; e++ {
		out = append(out, e)
	}
	return out
}

func (e NetworkError) Description() string {
	if e >= networkErrorCount {
		return "NetworkError(" + strconv.Itoa(int(e)) + ")"
	}
	return networkDescriptions[e]
}

func (e NetworkError) Error() string {
	return e.Description()
}

func (e NetworkError) ErrorCode() string {
	if e >= networkErrorCount {
		return "NETWORK_UNKNOWN"
	}
	return networkCodes[e]
}

func (e NetworkError) Context() map[string]string { return nil }

func (e NetworkError) SuggestedAction() string {
	switch e {
	case NetworkInvalidURL:
		return "fix api_base_url in config.yaml or pass --api-url"
	case NetworkBadStatus:
		return "the API may be rate limiting; wait and retry, or set api_key"
	default:
		return "check your network connection and retry"
	}
}

// Wrap attaches the underlying cause, keeping errors.Is(err, e) and Describe(err).
func (e NetworkError) Wrap(cause error) error {
	return wrapDescriptive(e, cause)
}

var (
	_ DescriptiveError = NetworkInvalidURL
	_ RecoverableError = NetworkInvalidURL
)
