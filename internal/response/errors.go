package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden      ErrCode = "FORBIDDEN"
	ErrAdminOnly      ErrCode = "ADMIN_ACCESS_ONLY"
	ErrNotInvited     ErrCode = "INVITATION_MISMATCH"
	ErrAlreadyTaken   ErrCode = "TEST_ALREADY_COMPLETED"
	ErrSelfDeletion   ErrCode = "SELF_DELETION"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrBadTimeValue   ErrCode = "INVALID_TIME_REMAINING"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound    ErrCode = "NOT_FOUND"
	ErrConflict    ErrCode = "CONFLICT"
	ErrNoQuestions ErrCode = "NO_QUESTIONS"

	// ─── Invitations ───────────────────────────────────────────────────
	ErrInvitationExpired   ErrCode = "INVITATION_EXPIRED"
	ErrInvitationCompleted ErrCode = "INVITATION_COMPLETED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrTokenRequired:
		return "Authentication token required."
	case ErrTokenInvalid:
		return "Invalid or expired authentication token."
	case ErrEmailTaken:
		return "Email already exists."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminOnly:
		return "This resource is restricted to administrators."
	case ErrNotInvited:
		return "This invitation is not for your account."
	case ErrAlreadyTaken:
		return "You have already completed this test."
	case ErrSelfDeletion:
		return "You cannot delete your own account."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrBadTimeValue:
		return "time_remaining is required and must not be negative."
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrNoQuestions:
		return "This test has no questions."
	case ErrInvitationExpired:
		return "This invitation has expired."
	case ErrInvitationCompleted:
		return "This test has already been completed."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
