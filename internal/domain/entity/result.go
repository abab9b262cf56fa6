package entity

// Check result statuses shared by every checker.
const (
	StatusSuccess   = "success"
	StatusError     = "error"
	StatusDisabled  = "disabled"
	StatusSkipped   = "skipped"
	StatusNotFound  = "not-found"
	StatusOK        = "OK"
	StatusAttention = "ATTENTION REQUIRED"
)

// Error classifications produced when a check fails.
const (
	ErrorTypeCredential = "credential"
	ErrorTypeAWSAPI     = "aws_api"
	ErrorTypeUnexpected = "unexpected"
)

// CheckResult is implemented by every per-check result struct.
type CheckResult interface {
	CheckStatus() string
	ErrorMessage() string
}

// ResultMeta carries the status and error fields common to all results.
// Embed it in concrete result structs.
type ResultMeta struct {
	Status            string `json:"status"`
	Error             string `json:"error,omitempty"`
	ErrorType         string `json:"error_type,omitempty"`
	IsCredentialError bool   `json:"is_credential_error,omitempty"`
	Remediation       string `json:"remediation,omitempty"`
}

func (m ResultMeta) CheckStatus() string  { return m.Status }
func (m ResultMeta) ErrorMessage() string { return m.Error }

// ErrorResult is the generic failure result used when a check unit
// raises before producing a typed result.
type ErrorResult struct {
	ResultMeta
	CheckName string `json:"check_name,omitempty"`
}

// NewErrorResult builds an ErrorResult with the unexpected classification.
func NewErrorResult(check, message string) ErrorResult {
	return ErrorResult{
		ResultMeta: ResultMeta{
			Status:    StatusError,
			Error:     message,
			ErrorType: ErrorTypeUnexpected,
		},
		CheckName: check,
	}
}

// ProfileResult pairs a profile with one check result for ordered rendering.
type ProfileResult struct {
	Profile     string
	AccountID   string
	DisplayName string
	Result      CheckResult
}

// ProfileError records a check that failed for one profile.
type ProfileError struct {
	Profile   string
	CheckName string
	Message   string
}
