package service

import "errors"

// ErrInvalidCredentials is returned for any login failure. Unknown username
// and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrInvalidStatus is returned when a status write is not in the canonical set.
var ErrInvalidStatus = errors.New("invalid status value")

// ErrReplyNotMarked is returned by Reply when the email went out but the
// transition to replied could not be written. The reply is delivered; only
// the stored status is stale.
var ErrReplyNotMarked = errors.New("reply sent but message not marked replied")
