package exception

// Fault categorizes a service error by its cause.
type Fault string

const (
	// FaultClient indicates the request was rejected as invalid.
	FaultClient Fault = "client"

	// FaultServer indicates the service failed to handle a valid request.
	FaultServer Fault = "server"

	// FaultThrottling indicates the caller exceeded a rate limit.
	FaultThrottling Fault = "throttling"
)

var throttlingCodes = map[string]bool{
	"Throttling":                             true,
	"ThrottlingException":                    true,
	"ThrottledException":                     true,
	"Throttled":                              true,
	"RequestThrottledException":              true,
	"TooManyRequestsException":               true,
	"ProvisionedThroughputExceededException": true,
	"TransactionInProgressException":         true,
	"RequestLimitExceeded":                   true,
	"BandwidthLimitExceeded":                 true,
	"LimitExceededException":                 true,
	"RequestThrottled":                       true,
	"SlowDown":                               true,
	"PriorRequestNotComplete":                true,
	"EC2ThrottledException":                  true,
}

// DefaultFault classifies an error from its code and HTTP status.
// Known throttling codes and status 429 are throttling; other 5xx statuses
// are server faults; everything else is a client fault.
func DefaultFault(code string, status int) Fault {
	switch {
	case throttlingCodes[code] || status == 429:
		return FaultThrottling
	case status >= 500:
		return FaultServer
	default:
		return FaultClient
	}
}

// IsThrottling reports whether err is a throttling service error.
func IsThrottling(err error) bool {
	d, ok := Details(err)
	return ok && d.Fault() == FaultThrottling
}
