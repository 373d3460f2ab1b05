package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid               ErrorCode = "invalid"
	ErrorMissingCredential     ErrorCode = "missing_credential"
	ErrorInvalidCredential     ErrorCode = "invalid_credential"
	ErrorUnauthorizedRole      ErrorCode = "unauthorized_role"
	ErrorInvalidCredentials    ErrorCode = "invalid_credentials"
	ErrorDuplicateIdentity     ErrorCode = "duplicate_identity"
	ErrorDuplicateRelationship ErrorCode = "duplicate_relationship"
	ErrorTargetNotFound        ErrorCode = "target_not_found"
	ErrorInvalidTargetRole     ErrorCode = "invalid_target_role"
	ErrorStore                 ErrorCode = "store_error"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error { return &ServiceError{Code: ErrorInvalid, Message: msg} }

func NewUnauthorizedRoleError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorizedRole, Message: msg}
}

// NewInvalidCredentialsError covers both unknown-user and wrong-password
// login failures with one indistinguishable error.
func NewInvalidCredentialsError() error {
	return &ServiceError{Code: ErrorInvalidCredentials, Message: "invalid credentials"}
}

func NewDuplicateIdentityError(msg string) error {
	return &ServiceError{Code: ErrorDuplicateIdentity, Message: msg}
}

func NewDuplicateRelationshipError(msg string) error {
	return &ServiceError{Code: ErrorDuplicateRelationship, Message: msg}
}

func NewTargetNotFoundError(msg string) error {
	return &ServiceError{Code: ErrorTargetNotFound, Message: msg}
}

func NewInvalidTargetRoleError(msg string) error {
	return &ServiceError{Code: ErrorInvalidTargetRole, Message: msg}
}

// NewStoreError deliberately carries a generic message; the store adapter
// logs the underlying failure and nothing internal reaches the client.
func NewStoreError() error {
	return &ServiceError{Code: ErrorStore, Message: "storage failure"}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ErrUniqueViolation is returned (wrapped) by store implementations when
// an insert hits a unique constraint. Services reclassify it into the
// matching duplicate error rather than trusting their preceding lookup.
var ErrUniqueViolation = errors.New("unique constraint violation")
