package availability

import "errors"

// ErrBadDate is returned when the requested date is not YYYY-MM-DD.
var ErrBadDate = errors.New("date must be YYYY-MM-DD")
