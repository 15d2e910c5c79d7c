package uc

import "errors"

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrNameExists       = errors.New("customer name already exists")
	ErrCustomerInUse    = errors.New("customer is referenced by applications")
)
