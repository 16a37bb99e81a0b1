package commons

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrUnauthorized = errors.New("You don't have access to this resource")
var ErrInvalidState = errors.New("Operation is not allowed in the current status")
var ErrInvalidAmount = errors.New("Amount must be greater than zero")
var ErrInvalidType = errors.New("Unsupported type")
var ErrInsufficientBalance = errors.New("Insufficient balance")
var ErrExceedsBalance = errors.New("Payment amount exceeds outstanding balance")
var ErrAccountNotActive = errors.New("Account is not active")
var ErrSameAccount = errors.New("Cannot transfer to the same account")
var ErrConflict = errors.New("Record was modified concurrently")
var ErrDuplicateKey = errors.New("Duplicate unique key")
var ErrDuplicateReference = errors.New("Reference generation exhausted retries")
