package inbox

import "errors"

var ErrInvalidMessage = errors.New("message must be valid text of 1 to 1000 characters")
