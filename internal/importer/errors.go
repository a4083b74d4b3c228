package importer

import "errors"

var (
	// ErrSectionNotFound indicates a configured section does not exist on the server.
	ErrSectionNotFound = errors.New("library section not found")

	// ErrUnknownKind indicates a configured section has an unsupported kind.
	ErrUnknownKind = errors.New("unknown section kind")
)
