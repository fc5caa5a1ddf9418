package testgen

import (
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants - every error message is a named constant, never
// an inline literal.
const (
	ErrMsgInvalidSignature   = "invalid function signature"
	ErrMsgEmptyCompletion    = "empty test"
	ErrMsgInvalidSyntax      = "invalid syntax"
	ErrMsgUnbalancedBrackets = "unrepairable bracket imbalance"
	ErrMsgUnknownRefiner     = "unknown refiner name"
	ErrMsgValidatorFailure   = "validator invocation failed"
	ErrMsgProviderFailure    = "completion provider invocation failed"
	ErrMsgMissingFunction    = "prompt has no target function"
	ErrMsgDuplicateTestID    = "test id assigned more than once"
	ErrMsgRetryChaining      = "retry prompt cannot retry a retry prompt"
)

// Error code constants for categorization.
const (
	ErrCodeFunctionModel = "TESTGEN_FUNCTION"
	ErrCodeAssembly      = "TESTGEN_ASSEMBLY"
	ErrCodeRefiner       = "TESTGEN_REFINER"
	ErrCodeCollector     = "TESTGEN_COLLECTOR"
	ErrCodeGeneration    = "TESTGEN_GENERATION"
	ErrCodeProvider      = "TESTGEN_PROVIDER"
	ErrCodeValidator     = "TESTGEN_VALIDATOR"
)

// Metadata keys for cuserr.WithMetadata.
const (
	MetaKeyAccessPath  = "access_path"
	MetaKeySignature   = "signature"
	MetaKeyRefiner     = "refiner"
	MetaKeyTestID      = "test_id"
	MetaKeyPromptID    = "prompt_id"
	MetaKeyTemperature = "temperature"
)

// NewInvalidSignatureError reports a function signature the parser could not
// match against the expected `[class ]accessPath(params)[ async]` shape.
func NewInvalidSignatureError(signature string, cause error) error {
	var err *cuserr.CustomError
	if cause != nil {
		err = cuserr.WrapStdError(cause, ErrCodeFunctionModel, ErrMsgInvalidSignature)
	} else {
		err = cuserr.NewValidationError(ErrCodeFunctionModel, ErrMsgInvalidSignature)
	}
	return err.WithMetadata(MetaKeySignature, signature)
}

// NewUnknownRefinerError reports a provenance record naming a refiner that
// is not part of the live refiner set.
func NewUnknownRefinerError(name string) error {
	return cuserr.NewValidationError(ErrCodeRefiner, ErrMsgUnknownRefiner).
		WithMetadata(MetaKeyRefiner, name)
}

// NewRetryChainingError reports an attempt to build a retry prompt whose
// original prompt is itself a retry prompt.
func NewRetryChainingError() error {
	return cuserr.NewValidationError(ErrCodeAssembly, ErrMsgRetryChaining)
}

// NewDuplicateTestIDError reports a collector bug where a test id would be
// assigned a second time.
func NewDuplicateTestIDError(id int) error {
	return cuserr.NewInternalError(ErrCodeCollector, nil).
		WithMetadata(MetaKeyTestID, strconv.Itoa(id))
}

// NewProviderFailureError wraps a completion provider transport error. The
// generation loop never sees this directly — providers are contractually
// required to swallow it into an empty completion set. It is available for
// provider implementations that want a categorized diagnostic to log;
// HTTPProvider logs the underlying error as is.
func NewProviderFailureError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeProvider, ErrMsgProviderFailure)
}

// NewValidatorFailureError wraps a validator transport/spawn error that
// prevented classification into one of the four TestOutcome variants.
func NewValidatorFailureError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeValidator, ErrMsgValidatorFailure)
}
