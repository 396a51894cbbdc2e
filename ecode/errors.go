package ecode

import (
	"fmt"
)

const (
	requiredMsg = "is required"
	invalidMsg  = "is invalid"
	existMsg    = "already exists"
	notExistMsg = "does not exist"
	expiredMsg  = "has expired"
	deniedMsg   = "access denied"
)

func subject(msg string, k []string) string {
	if len(k) > 0 && k[0] != "" {
		return fmt.Sprintf("%s %s", k[0], msg)
	}
	return msg
}

// FieldIsRequired returns field required message
func FieldIsRequired(k ...string) string { return subject(requiredMsg, k) }

// FieldIsInvalid returns field invalid message
func FieldIsInvalid(k ...string) string { return subject(invalidMsg, k) }

// AlreadyExist returns already exist message
func AlreadyExist(k ...string) string { return subject(existMsg, k) }

// NotExist returns not exist message
func NotExist(k ...string) string { return subject(notExistMsg, k) }

// Expired returns expired message
func Expired(k ...string) string { return subject(expiredMsg, k) }

// Denied returns access denied message
func Denied(k ...string) string {
	if len(k) > 0 && k[0] != "" {
		return fmt.Sprintf("%s: %s", deniedMsg, k[0])
	}
	return deniedMsg
}
