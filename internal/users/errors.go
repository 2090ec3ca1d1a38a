package users

import "errors"

var (
	// ErrMissingFields is returned when a required signup field is absent.
	ErrMissingFields = errors.New("first_name, last_name, username and password are required")

	// ErrWeakPassword is returned for passwords shorter than 6 characters.
	ErrWeakPassword = errors.New("password must be at least 6 characters")

	// ErrBadDate is returned for dates not in YYYY-MM-DD form.
	ErrBadDate = errors.New("date_of_birth must be YYYY-MM-DD")

	// ErrBadRole is returned for roles other than user or admin.
	ErrBadRole = errors.New("role must be user or admin")

	// ErrDuplicate is returned when the username or phone is taken.
	ErrDuplicate = errors.New("username or phone number already exists")

	// ErrNotFound is returned when the user does not exist.
	ErrNotFound = errors.New("user not found")
)
