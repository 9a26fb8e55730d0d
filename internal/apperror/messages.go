package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeEthereumConnectionFailed: "Failed to connect to Ethereum node",
	CodeEthereumSubscribeFailed:  "Failed to subscribe to Ethereum events",
	CodeEthereumRPCError:         "Ethereum RPC call failed",
	CodeContractCallFailed:       "Smart contract call failed",
	CodeResponseDecodeFailed:     "Failed to decode contract response",

	CodeRateReadFailed:     "Failed to read lending rate",
	CodePositionReadFailed: "Failed to read protocol position",
	CodeUnknownProtocol:    "Unknown lending protocol",

	CodePlanBuildFailed:    "Failed to build rebalance plan",
	CodeCallEncodingFailed: "Failed to ABI-encode call",

	CodeModuleNotEnabled:   "Execution module is not enabled on the Safe",
	CodeBatchEncodingError: "Failed to encode transaction batch",
	CodeExecutionReverted:  "Batch execution reverted on-chain",
	CodeSubmissionFailed:   "Failed to submit transaction batch",

	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
