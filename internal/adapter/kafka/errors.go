package kafka

import "errors"

var (
	errMissingOperationID = errors.New("brief message missing operation_id")
	errMissingText        = errors.New("brief message missing text")
)
