package xsh

import (
	"encoding/json"
	"fmt"
)

// XSHError is implemented by every error kind in the taxonomy, so callers
// can dispatch on Kind() without a type switch over nine concrete types.
type XSHError interface {
	error
	Kind() string
	Payload() map[string]any
}

func formatPayload(kind string, payload map[string]any) string {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%s: %v", kind, payload)
	}
	return fmt.Sprintf("%s: %s", kind, string(b))
}

// PropertyNotFoundError — unknown command name, unknown --long, unknown
// short-flag char.
type PropertyNotFoundError struct {
	Property   string
	Context    string
	Suggestion string
}

func (e *PropertyNotFoundError) Kind() string { return "PropertyNotFound" }
func (e *PropertyNotFoundError) Payload() map[string]any {
	p := map[string]any{"property": e.Property, "context": e.Context}
	if e.Suggestion != "" {
		p["suggestion"] = e.Suggestion
	}
	return p
}
func (e *PropertyNotFoundError) Error() string {
	msg := formatPayload(e.Kind(), e.Payload())
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// PropertyTypeMismatchError — operand has the wrong type for an operator;
// a write into a deferred intermediate.
type PropertyTypeMismatchError struct {
	Operator string
	Expected string
	Got      string
}

func (e *PropertyTypeMismatchError) Kind() string { return "PropertyTypeMismatch" }
func (e *PropertyTypeMismatchError) Payload() map[string]any {
	return map[string]any{"operator": e.Operator, "expected": e.Expected, "got": e.Got}
}
func (e *PropertyTypeMismatchError) Error() string { return formatPayload(e.Kind(), e.Payload()) }

// PropertyRequiredError — a required positional, or a required variadic
// with zero values, is missing.
type PropertyRequiredError struct {
	Command  string
	Argument string
}

func (e *PropertyRequiredError) Kind() string { return "PropertyRequired" }
func (e *PropertyRequiredError) Payload() map[string]any {
	return map[string]any{"command": e.Command, "argument": e.Argument}
}
func (e *PropertyRequiredError) Error() string { return formatPayload(e.Kind(), e.Payload()) }

// ParameterTypeInvalidError — an internal helper was called with a
// parameter that fails its type check.
type ParameterTypeInvalidError struct {
	Helper    string
	Parameter string
}

func (e *ParameterTypeInvalidError) Kind() string { return "ParameterTypeInvalid" }
func (e *ParameterTypeInvalidError) Payload() map[string]any {
	return map[string]any{"helper": e.Helper, "parameter": e.Parameter}
}
func (e *ParameterTypeInvalidError) Error() string { return formatPayload(e.Kind(), e.Payload()) }

// VariableTypeInvalidError — a type-rule entry is neither a string nor a
// constructor.
type VariableTypeInvalidError struct {
	Name string
}

func (e *VariableTypeInvalidError) Kind() string { return "VariableTypeInvalid" }
func (e *VariableTypeInvalidError) Payload() map[string]any {
	return map[string]any{"name": e.Name}
}
func (e *VariableTypeInvalidError) Error() string { return formatPayload(e.Kind(), e.Payload()) }

// AssertFailedError — a value did not match any expected type.
type AssertFailedError struct {
	Expected []string
	Got      string
}

func (e *AssertFailedError) Kind() string { return "AssertFailed" }
func (e *AssertFailedError) Payload() map[string]any {
	return map[string]any{"expected": e.Expected, "got": e.Got}
}
func (e *AssertFailedError) Error() string { return formatPayload(e.Kind(), e.Payload()) }

// ArgumentsLengthInvalidError — a command with no declared args received
// arguments, or a helper length check failed.
type ArgumentsLengthInvalidError struct {
	Command  string
	Expected string
	Got      int
}

func (e *ArgumentsLengthInvalidError) Kind() string { return "ArgumentsLengthInvalid" }
func (e *ArgumentsLengthInvalidError) Payload() map[string]any {
	return map[string]any{"command": e.Command, "expected": e.Expected, "got": e.Got}
}
func (e *ArgumentsLengthInvalidError) Error() string { return formatPayload(e.Kind(), e.Payload()) }

// WrongArgumentPositionError — positional after optional; short-flag /
// long-option after variadic started; variadic not last.
type WrongArgumentPositionError struct {
	Command string
	Reason  string
}

func (e *WrongArgumentPositionError) Kind() string { return "WrongArgumentPosition" }
func (e *WrongArgumentPositionError) Payload() map[string]any {
	return map[string]any{"command": e.Command, "reason": e.Reason}
}
func (e *WrongArgumentPositionError) Error() string { return formatPayload(e.Kind(), e.Payload()) }

// MathResultInvalidError — a math fold produced undefined.
type MathResultInvalidError struct {
	Operator string
}

func (e *MathResultInvalidError) Kind() string { return "MathResultInvalid" }
func (e *MathResultInvalidError) Payload() map[string]any {
	return map[string]any{"operator": e.Operator}
}
func (e *MathResultInvalidError) Error() string { return formatPayload(e.Kind(), e.Payload()) }

// continueSignal is the internal "try the next rung" signal used by the
// converter and math ladders, returned through the normal error channel so
// a Callback's (Value, error) result can carry it without a second return
// path.
type continueSignal struct{}

func (continueSignal) Error() string { return "continue: defer to next rung" }

var continueLadder error = continueSignal{}

// rungResult is what each converter/math ladder step returns: either a
// value it handled, or a signal to keep trying rungs.
type rungResult struct {
	value   Value
	handled bool
	err     error
}

func tried(v Value) rungResult       { return rungResult{value: v, handled: true} }
func failed(err error) rungResult    { return rungResult{handled: true, err: err} }
func skip() rungResult               { return rungResult{handled: false} }
