package dataset

import "errors"

// ErrNotFound indicates the dataset directory or its annotation file is absent.
var ErrNotFound = errors.New("dataset not found")

// ErrMalformed indicates the annotation file is not valid JSON or is
// missing required keys.
var ErrMalformed = errors.New("malformed annotation data")
