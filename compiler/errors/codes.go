package errors

// Error code constants organized by phase
// E001-E099: Lexer errors
// E100-E199: Parser errors
// E200-E299: Range errors
// E300-E399: Document errors
// E400-E499: I/O errors

const (
	// Lexer errors (E001-E099)
	ErrUnterminatedComment = "E001"
	ErrInvalidIdentifier   = "E002"
	ErrInvalidNumber       = "E003"
	ErrNumberOverflow      = "E004"
	ErrUnterminatedString  = "E005"
	ErrInvalidEscape       = "E006"
	ErrInvalidBool         = "E007"

	// Parser errors (E100-E199)
	ErrUnexpectedToken     = "E100"
	ErrExpectedIdentifier  = "E101"
	ErrExpectedType        = "E102"
	ErrExpectedValue       = "E103"
	ErrInvalidBound        = "E104"
	ErrInvalidConstantType = "E105"
	ErrDuplicateMember     = "E106"
	ErrUnexpectedDefault   = "E107"
	ErrExpectedEquals      = "E108"
	ErrInvalidArrayLiteral = "E109"

	// Range errors (E200-E299)
	ErrIntegerOutOfRange = "E200"
	ErrFloatOutOfRange   = "E201"
	ErrBoundExceeded     = "E202"
	ErrArrayLength       = "E203"

	// Document errors (E300-E399)
	ErrInvalidServiceSpec = "E300"
	ErrInvalidActionSpec  = "E301"
	ErrInvalidPackageName = "E302"
	ErrInvalidTypeName    = "E303"

	// I/O errors (E400-E499)
	ErrReadFailed       = "E400"
	ErrInvalidUTF8      = "E401"
	ErrUnknownExtension = "E402"
)

// ErrorMessages maps error codes to their default messages
var ErrorMessages = map[string]string{
	ErrUnterminatedComment: "Unterminated block comment",
	ErrInvalidIdentifier:   "Invalid identifier",
	ErrInvalidNumber:       "Invalid number literal",
	ErrNumberOverflow:      "Integer literal does not fit in 128 bits",
	ErrUnterminatedString:  "Unterminated string literal",
	ErrInvalidEscape:       "Invalid escape sequence",
	ErrInvalidBool:         "Invalid boolean literal",

	ErrUnexpectedToken:     "Unexpected input",
	ErrExpectedIdentifier:  "Expected identifier",
	ErrExpectedType:        "Expected type",
	ErrExpectedValue:       "Expected value",
	ErrInvalidBound:        "Invalid bound",
	ErrInvalidConstantType: "Type cannot be used for a constant",
	ErrDuplicateMember:     "Duplicate member name",
	ErrUnexpectedDefault:   "Type does not accept a default value",
	ErrExpectedEquals:      "Expected '=' in constant definition",
	ErrInvalidArrayLiteral: "Invalid array literal",

	ErrIntegerOutOfRange: "Integer value out of range",
	ErrFloatOutOfRange:   "Floating point value out of range",
	ErrBoundExceeded:     "Value exceeds declared bound",
	ErrArrayLength:       "Array literal length does not match declared size",

	ErrInvalidServiceSpec: "Invalid service specification",
	ErrInvalidActionSpec:  "Invalid action specification",
	ErrInvalidPackageName: "Invalid package name",
	ErrInvalidTypeName:    "Invalid type name",

	ErrReadFailed:       "Failed to read interface file",
	ErrInvalidUTF8:      "Interface file is not valid UTF-8",
	ErrUnknownExtension: "Unknown interface file extension",
}

// GetErrorMessage returns the default message for an error code
func GetErrorMessage(code string) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "Unknown error"
}

// GetPhaseForCode returns the phase name for an error code
func GetPhaseForCode(code string) string {
	if len(code) != 4 || code[0] != 'E' {
		return "unknown"
	}

	switch {
	case code >= "E001" && code <= "E099":
		return "lexer"
	case code >= "E100" && code <= "E199":
		return "parser"
	case code >= "E200" && code <= "E299":
		return "range"
	case code >= "E300" && code <= "E399":
		return "document"
	case code >= "E400" && code <= "E499":
		return "io"
	default:
		return "unknown"
	}
}
