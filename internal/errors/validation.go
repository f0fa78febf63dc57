package errors

import "fmt"

// SyntaxError represents a syntax parsing error in a services file expression
type SyntaxError struct {
	*BaseError
	Token    string // the token that caused the error
	Position int    // position in the input where error occurred
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
	}
}

// NewSyntaxErrorWithToken creates a syntax error with token information
func NewSyntaxErrorWithToken(message, token string, position int) *SyntaxError {
	if token != "" {
		message = fmt.Sprintf("%s (near token '%s')", message, token)
	}

	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message),
		Token:     token,
		Position:  position,
	}
}

// WithLocation sets the location
func (e *SyntaxError) WithLocation(loc SourceLocation) *SyntaxError {
	e.BaseError.WithLocation(loc)
	return e
}

// RegistrationError represents a failure to register a service or class
type RegistrationError struct {
	*BaseError
	ComponentType string // type of component (service, class, pass)
	ComponentName string // name of the component
	Reason        string // reason for registration failure
}

// NewRegistrationError creates a new registration error
func NewRegistrationError(componentType, componentName, reason string) *RegistrationError {
	message := fmt.Sprintf("failed to register %s '%s': %s", componentType, componentName, reason)
	return &RegistrationError{
		BaseError:     New(RegistrationErrorCode, message),
		ComponentType: componentType,
		ComponentName: componentName,
		Reason:        reason,
	}
}

// GenerationError represents an error during proxy generation
type GenerationError struct {
	*BaseError
	GenerationType string // type of generation (template, proxy, etc.)
	TargetFile     string // target file being generated
	Stage          string // stage of generation where error occurred
}

// NewGenerationError creates a new generation error
func NewGenerationError(message string) *GenerationError {
	return &GenerationError{
		BaseError: New(GenerationErrorCode, message),
	}
}

// WithTargetFile sets the target file
func (e *GenerationError) WithTargetFile(targetFile string) *GenerationError {
	e.TargetFile = targetFile
	return e
}

// WithStage sets the generation stage
func (e *GenerationError) WithStage(stage string) *GenerationError {
	e.Stage = stage
	return e
}
