package extraction

import "errors"

// ErrUnreadableFile indicates the engine could not process the file at all
// (unsupported or corrupt). Terminal for the upload attempt: the intake
// coordinator must not create any record from it.
var ErrUnreadableFile = errors.New("extraction: unreadable file")
