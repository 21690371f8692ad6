package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199). These fail an entire run up front.
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidStopFraction  ErrorCode = 102
	ErrCodeInvalidRewardRisk    ErrorCode = 103
	ErrCodeInvalidRiskBasis     ErrorCode = 104
	ErrCodeInvalidCostModel     ErrorCode = 105
	ErrCodeInvalidThreshold     ErrorCode = 106
	ErrCodeMissingParameter     ErrorCode = 107

	// Data errors (200-299). These exclude a single instance, never abort a sweep.
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeMalformedBar          ErrorCode = 203
	ErrCodeNonMonotonicSeries    ErrorCode = 204
	ErrCodeInvalidRangeWindow    ErrorCode = 205

	// Evaluation errors (300-399).
	ErrCodeDegenerateRisk    ErrorCode = 300
	ErrCodeMissingExcursions ErrorCode = 301

	// Robustness errors (400-499).
	ErrCodeInsufficientSample ErrorCode = 400
	ErrCodeEmptyTradeSequence ErrorCode = 401

	// Engine errors (600-699).
	ErrCodeEngineStateNil     ErrorCode = 600
	ErrCodeEngineInitFailed   ErrorCode = 601
	ErrCodeEngineNoDatasource ErrorCode = 602
	ErrCodeEngineNoResultsDir ErrorCode = 603
	ErrCodeEngineNoSweep      ErrorCode = 604
	ErrCodeRunCancelled       ErrorCode = 605

	// Report errors (700-799).
	ErrCodeReportWriteFailed ErrorCode = 700
)
