package errors

// ErrorCode classifies an AppError
type ErrorCode int

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_VALIDATION
	ErrorCode_TRANSPORT
	ErrorCode_NETWORK
	ErrorCode_INTERNAL
	ErrorCode_NOT_FOUND
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:    "UNKNOWN",
	ErrorCode_VALIDATION: "VALIDATION",
	ErrorCode_TRANSPORT:  "TRANSPORT",
	ErrorCode_NETWORK:    "NETWORK",
	ErrorCode_INTERNAL:   "INTERNAL",
	ErrorCode_NOT_FOUND:  "NOT_FOUND",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
