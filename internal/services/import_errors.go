// internal/services/import_errors.go
package services

import (
	"errors"
	"fmt"
)

type ImportErrorKind string

const (
	ErrKindAlreadyImported     ImportErrorKind = "already_imported"
	ErrKindSourceUnavailable   ImportErrorKind = "source_unavailable"
	ErrKindTransformFailed     ImportErrorKind = "transform_failed"
	ErrKindDestinationRejected ImportErrorKind = "destination_rejected"
	ErrKindPersistenceFailed   ImportErrorKind = "persistence_failed"
	ErrKindInternal            ImportErrorKind = "internal_error"
)

// Description is the fixed text shown to API clients for the kind.
func (k ImportErrorKind) Description() string {
	switch k {
	case ErrKindAlreadyImported:
		return "Product has already been imported"
	case ErrKindSourceUnavailable:
		return "Could not retrieve product information from AliExpress"
	case ErrKindTransformFailed:
		return "Product data could not be converted"
	case ErrKindDestinationRejected:
		return "Shopify rejected the product"
	case ErrKindPersistenceFailed:
		return "Product was created in Shopify but could not be saved locally"
	default:
		return "Unexpected error during import"
	}
}

// ImportError is the failure of importing a single source identifier.
type ImportError struct {
	Kind            ImportErrorKind
	SourceProductID string
	// ShopifyID is set when the remote product exists but local persistence failed.
	ShopifyID string
	Err       error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import %s: %s: %v", e.SourceProductID, e.Kind, e.Err)
	}
	return fmt.Sprintf("import %s: %s", e.SourceProductID, e.Kind)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// ImportErrorKindOf returns the kind of an import failure, or ErrKindInternal
// for errors that did not come from the pipeline.
func ImportErrorKindOf(err error) ImportErrorKind {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ErrKindInternal
}

var ErrNothingToImport = errors.New("all requested products have already been imported")
