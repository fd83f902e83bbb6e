// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyInternalError = "error.internal"
	KeyRateLimited   = "error.rate_limited"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"
	KeyInvalidID          = "validation.invalid_id"

	// Products
	KeyProductNotFound     = "product.not_found"
	KeyProductUpdated      = "product.updated"
	KeyProductDeleted      = "product.deleted"
	KeyProductSynced       = "product.synced"
	KeyProductSEOGenerated = "product.seo_generated"

	// Import pipeline
	KeyImportStarted             = "import.started"
	KeyImportAlreadyImported     = "import.already_imported"
	KeyImportAllAlreadyImported  = "import.all_already_imported"
	KeyImportSourceUnavailable   = "import.source_unavailable"
	KeyImportTransformFailed     = "import.transform_failed"
	KeyImportDestinationRejected = "import.destination_rejected"
	KeyImportPersistenceFailed   = "import.persistence_failed"
	KeyImportInternal            = "import.internal_error"
	KeyImportJobNotFound         = "import_job.not_found"
	KeySourceProductNotFound     = "source_product.not_found"

	// Storefront
	KeyShopifyUnavailable = "shopify.unavailable"

	// SNS content
	KeySNSContentNotFound    = "sns_content.not_found"
	KeySNSContentGenerated   = "sns_content.generated"
	KeySNSContentUpdated     = "sns_content.updated"
	KeySNSContentRegenerated = "sns_content.regenerated"
	KeySNSContentDeleted     = "sns_content.deleted"

	// Users
	KeyUserNotFound    = "user.not_found"
	KeyUserExists      = "user.exists"
	KeyUserCreated     = "user.created"
	KeyUserUpdated     = "user.updated"
	KeyUserDeleted     = "user.deleted"
	KeyUserActivated   = "user.activated"
	KeyUserDeactivated = "user.deactivated"

	// Logs
	KeyLogsPurged        = "logs.purged"
	KeyLogsInvalidFormat = "logs.invalid_format"
)
