package validation

import "errors"

// ErrPayloadTooLarge is returned when the request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrInvalidMimeType is returned when an uploaded file has a disallowed MIME type
var ErrInvalidMimeType = errors.New("invalid MIME type")

// ErrImageTooLarge is returned when image dimensions exceed the configured caps
var ErrImageTooLarge = errors.New("image dimensions too large")

// ErrNotAnImage is returned when a file claims an image MIME type but does not decode
var ErrNotAnImage = errors.New("file is not a decodable image")
