package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAffiliateNotFound    = errors.New("affiliate not found")
	ErrCorruptHierarchy     = errors.New("corrupt sponsor hierarchy")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrInsufficientBalance  = errors.New("insufficient available balance")
	ErrSelfSponsor          = errors.New("affiliate cannot sponsor itself")
	ErrCommissionOverflow   = errors.New("commission total exceeds order total")
	ErrEmailTaken           = errors.New("email already registered")
	ErrSponsorCodeNotFound  = errors.New("sponsor referral code not found")
	ErrWithdrawalNotFound   = errors.New("withdrawal request not found")
	ErrCommissionNotFound   = errors.New("commission record not found")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrAffiliateNotApproved = errors.New("affiliate is not approved")
)

// TransitionError reports a rejected state-machine transition with enough
// context for the caller to act: which record, what was attempted, and the
// state it was actually in. Unwraps to ErrInvalidTransition.
type TransitionError struct {
	Entity    string
	ID        uint
	From      string
	Attempted string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %d: cannot %s from state %s", e.Entity, e.ID, e.Attempted, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
