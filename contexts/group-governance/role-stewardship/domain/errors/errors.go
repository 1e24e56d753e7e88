package errors

import "errors"

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidWeight           = errors.New("trust weight must be between 0 and 100")
	ErrSelfTrust               = errors.New("trustor and trustee must differ")
	ErrNotAMember              = errors.New("user is not a member of the group")
	ErrAlreadyHolder           = errors.New("user already holds the role")
	ErrRoleNotTrustActivated   = errors.New("role is not trust activated")
	ErrRoleNotAdminAssigned    = errors.New("role is not admin assigned")
	ErrRoleBusy                = errors.New("role is busy, retry later")
	ErrRoleNotFound            = errors.New("role not found")
	ErrGroupNotFound           = errors.New("group not found")
	ErrNotACandidate           = errors.New("trustee has not declared candidacy")
	ErrRoleFull                = errors.New("role is at capacity")
	ErrBootstrapUnavailable    = errors.New("role cannot be bootstrapped")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidRoleDefinition   = errors.New("invalid role definition")
	ErrModeTransitionForbidden = errors.New("group mode transition is not allowed")
	ErrMembershipTooRecent     = errors.New("membership is too recent to express trust")
	ErrTrustRateLimited        = errors.New("trust for this candidate was changed too recently")
	ErrConflict                = errors.New("conflict")
)

// IsRetryable reports whether the caller may retry the failed operation with backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRoleBusy)
}

var known = []error{
	ErrInvalidInput,
	ErrInvalidWeight,
	ErrSelfTrust,
	ErrNotAMember,
	ErrAlreadyHolder,
	ErrRoleNotTrustActivated,
	ErrRoleNotAdminAssigned,
	ErrRoleBusy,
	ErrRoleNotFound,
	ErrGroupNotFound,
	ErrNotACandidate,
	ErrRoleFull,
	ErrBootstrapUnavailable,
	ErrForbidden,
	ErrInvalidRoleDefinition,
	ErrModeTransitionForbidden,
	ErrMembershipTooRecent,
	ErrTrustRateLimited,
	ErrConflict,
}

// IsDomain reports whether err wraps one of the sentinels above, as opposed
// to a storage or transport failure.
func IsDomain(err error) bool {
	for _, target := range known {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
