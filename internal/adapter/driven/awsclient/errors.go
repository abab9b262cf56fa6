package awsclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
	"github.com/primanata/aws-monitoring-hub-go/internal/domain/entity"
)

// credentialErrorCodes are the API error codes treated as expired or
// invalid credentials rather than a check failure.
var credentialErrorCodes = map[string]bool{
	"ExpiredTokenException":        true,
	"ExpiredToken":                 true,
	"InvalidIdentityToken":         true,
	"UnrecognizedClientException":  true,
	"InvalidClientTokenId":         true,
	"SignatureDoesNotMatch":        true,
	"AuthFailure":                  true,
	"AccessDenied":                 true,
	"AccessDeniedException":        true,
	"UnauthorizedAccess":           true,
}

// credentialHints mark non-API errors (usually SSO token loading) as
// credential problems when the message contains one of them.
var credentialHints = []string{
	"expired",
	"token",
	"sso",
	"refresh",
	"the sso session",
	"unable to load sso token",
	"error when retrieving token",
}

// Classification describes a failed AWS call in result-friendly terms.
type Classification struct {
	ErrorType         string
	Message           string
	IsCredentialError bool
	Remediation       string
}

// Classify maps an error from an AWS call to its classification.
func Classify(err error, profile string) Classification {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		msg := fmt.Sprintf("%s: %s", code, apiErr.ErrorMessage())
		if credentialErrorCodes[code] || containsHint(apiErr.ErrorMessage()) {
			return Classification{
				ErrorType:         entity.ErrorTypeCredential,
				Message:           msg,
				IsCredentialError: true,
				Remediation:       remediation(profile),
			}
		}
		return Classification{ErrorType: entity.ErrorTypeAWSAPI, Message: msg}
	}

	msg := err.Error()
	if containsHint(msg) {
		return Classification{
			ErrorType:         entity.ErrorTypeCredential,
			Message:           msg,
			IsCredentialError: true,
			Remediation:       remediation(profile),
		}
	}
	return Classification{ErrorType: entity.ErrorTypeUnexpected, Message: msg}
}

// Meta converts a classification into the shared result fields with
// status "error".
func (c Classification) Meta() entity.ResultMeta {
	return entity.ResultMeta{
		Status:            entity.StatusError,
		Error:             c.Message,
		ErrorType:         c.ErrorType,
		IsCredentialError: c.IsCredentialError,
		Remediation:       c.Remediation,
	}
}

// ErrorMeta is a shorthand for Classify(err, profile).Meta().
func ErrorMeta(err error, profile string) entity.ResultMeta {
	return Classify(err, profile).Meta()
}

func containsHint(message string) bool {
	lower := strings.ToLower(message)
	for _, hint := range credentialHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func remediation(profile string) string {
	return fmt.Sprintf("aws sso login --profile %s", profile)
}
