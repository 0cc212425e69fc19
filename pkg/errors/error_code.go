package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidTimeframe     ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInvalidMultiplier    ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105
	ErrCodeInvalidVersion       ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeDataUnavailable ErrorCode = 200
	ErrCodeSeriesNotFound  ErrorCode = 201
	ErrCodeQueryFailed     ErrorCode = 202

	// Indicator errors (300-399)
	ErrCodeIndicatorUnknownKind   ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorConfig        ErrorCode = 302
	ErrCodeIndicatorCalculation   ErrorCode = 303

	// Strategy errors (400-499)
	ErrCodeStrategyNoEntryPoint  ErrorCode = 400
	ErrCodeStrategyRuntimeFault  ErrorCode = 401
	ErrCodeStrategyLoadFailed    ErrorCode = 402
	ErrCodeStrategyVersion       ErrorCode = 403
	ErrCodeUnsupportedStrategy   ErrorCode = 404
	ErrCodeStrategyConfigInvalid ErrorCode = 405

	// Ledger errors (500-599)
	// Order rejection is deliberately not an error code: insufficient
	// funds/shares is a silent no-op at the ledger level.
	ErrCodeLedgerInvalidCapital ErrorCode = 500

	// Replay errors (600-699)
	ErrCodeReplayProtocol      ErrorCode = 600
	ErrCodeReplaySessionClosed ErrorCode = 601

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 703
)
