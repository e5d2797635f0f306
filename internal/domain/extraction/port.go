package extraction

import "context"

// Engine is the black-box OCR capability. Implementations only promise the
// Result shape: when no structured fields can be recognized they still
// return a Result with confidence near 0 (raw text populated if any was
// read), and fail with ErrUnreadableFile only when the file itself cannot
// be processed at all.
type Engine interface {
	Extract(ctx context.Context, up Upload) (*Result, error)
}
