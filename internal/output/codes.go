package output

// ErrorCode is the machine-readable class of a failed command.
type ErrorCode string

const (
	ErrGeneral    ErrorCode = "GENERAL_ERROR"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrConflict   ErrorCode = "CONFLICT"
)

// Process exit codes. Scripts can tell a missing record from a bad file
// without parsing output.
const (
	ExitSuccess    = 0
	ExitGeneral    = 1
	ExitNotFound   = 2
	ExitValidation = 3
	ExitConflict   = 4
)

var exitCodes = map[ErrorCode]int{
	ErrGeneral:    ExitGeneral,
	ErrNotFound:   ExitNotFound,
	ErrValidation: ExitValidation,
	ErrConflict:   ExitConflict,
}

// ExitCodeForError maps code to its exit code. Unknown codes exit with
// ExitGeneral.
func ExitCodeForError(code ErrorCode) int {
	if n, ok := exitCodes[code]; ok {
		return n
	}
	return ExitGeneral
}
