package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Rebalancer-specific error codes
const (
	// Blockchain/Ethereum errors
	CodeEthereumConnectionFailed Code = "ETHEREUM_CONNECTION_FAILED"
	CodeEthereumSubscribeFailed  Code = "ETHEREUM_SUBSCRIBE_FAILED"
	CodeEthereumRPCError         Code = "ETHEREUM_RPC_ERROR"
	CodeContractCallFailed       Code = "CONTRACT_CALL_FAILED"
	CodeResponseDecodeFailed     Code = "RESPONSE_DECODE_FAILED"

	// Lending protocol errors
	CodeRateReadFailed     Code = "RATE_READ_FAILED"
	CodePositionReadFailed Code = "POSITION_READ_FAILED"
	CodeUnknownProtocol    Code = "UNKNOWN_PROTOCOL"

	// Plan construction errors
	CodePlanBuildFailed    Code = "PLAN_BUILD_FAILED"
	CodeCallEncodingFailed Code = "CALL_ENCODING_FAILED"

	// Safe execution errors
	CodeModuleNotEnabled   Code = "MODULE_NOT_ENABLED"
	CodeBatchEncodingError Code = "BATCH_ENCODING_ERROR"
	CodeExecutionReverted  Code = "EXECUTION_REVERTED"
	CodeSubmissionFailed   Code = "SUBMISSION_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
