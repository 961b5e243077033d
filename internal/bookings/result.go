package bookings

import "github.com/minpaku-suite/minpaku-backend/pkg/enums"

// TransitionResult is the immutable outcome of a transition attempt. A new
// value is produced by every TransitionTo call and never reused.
type TransitionResult struct {
	success      bool
	newState     enums.BookingState
	errorCode    string
	errorMessage string
	meta         map[string]any
}

// Success builds a result for a completed transition.
func Success(newState enums.BookingState, meta map[string]any) TransitionResult {
	return TransitionResult{
		success:  true,
		newState: newState,
		meta:     copyMeta(meta),
	}
}

// Failure builds a result for a rejected transition.
func Failure(errorCode, errorMessage string, meta map[string]any) TransitionResult {
	return TransitionResult{
		errorCode:    errorCode,
		errorMessage: errorMessage,
		meta:         copyMeta(meta),
	}
}

// IsSuccess reports whether the transition took effect.
func (r TransitionResult) IsSuccess() bool {
	return r.success
}

// NewState returns the resulting state. Only meaningful when IsSuccess.
func (r TransitionResult) NewState() enums.BookingState {
	return r.newState
}

// ErrorCode returns the machine-readable failure code, empty on success.
func (r TransitionResult) ErrorCode() string {
	return r.errorCode
}

// ErrorMessage returns the human-readable failure text, empty on success.
func (r TransitionResult) ErrorMessage() string {
	return r.errorMessage
}

// Meta returns a copy of the transition context metadata.
func (r TransitionResult) Meta() map[string]any {
	return copyMeta(r.meta)
}

// MetaValue returns the metadata value for key, or fallback when absent.
func (r TransitionResult) MetaValue(key string, fallback any) any {
	if value, ok := r.meta[key]; ok {
		return value
	}
	return fallback
}
