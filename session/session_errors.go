package session

import "errors"

var (
	SignInFailedErr     = errors.New("interactive sign-in could not be initiated")
	NotAuthenticatedErr = errors.New("no authenticated session")
)
