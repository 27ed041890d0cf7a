// Package results provides a generic operation result that separates
// domain failures from infrastructure errors. Services return
// (OperationResult, error): the error is reserved for infrastructure
// problems (storage, marshalling), while the Failure side carries typed
// business failures the caller is expected to handle as normal outcomes.
package results

// OperationResult holds either a success payload or a failure payload.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult constructs a successful result.
func SuccessResult[S any, F any](value S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &value}
}

// FailureResult constructs a failed result.
func FailureResult[S any, F any](failure F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &failure}
}

// IsSuccess reports whether the result carries a success payload.
func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

// IsFailure reports whether the result carries a failure payload.
func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}
