// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeLookupQueryEmpty    Code = "LOOKUP_QUERY_EMPTY"
	CodeLookupKindInvalid   Code = "LOOKUP_KIND_INVALID"
	CodeLookupCutoffInvalid Code = "LOOKUP_CUTOFF_INVALID"
	CodeLookupFilterInvalid Code = "LOOKUP_FILTER_INVALID"

	// Disambiguation prompt errors
	CodePromptChoiceInvalid Code = "PROMPT_CHOICE_INVALID"
	CodePromptUnavailable   Code = "PROMPT_UNAVAILABLE"

	// Homebrew collection errors
	CodeCollectionUnavailable     Code = "COLLECTION_UNAVAILABLE"
	CodeCollectionNameEmpty       Code = "COLLECTION_NAME_EMPTY"
	CodeCollectionKindInvalid     Code = "COLLECTION_KIND_INVALID"
	CodeCollectionOwnerEmpty      Code = "COLLECTION_OWNER_EMPTY"
	CodeCollectionEntityNameEmpty Code = "COLLECTION_ENTITY_NAME_EMPTY"

	// Compendium errors
	CodeCompendiumLoadFailed Code = "COMPENDIUM_LOAD_FAILED"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeLookupQueryEmpty,
		CodeLookupKindInvalid,
		CodeLookupCutoffInvalid,
		CodeLookupFilterInvalid,
		CodePromptChoiceInvalid,
		CodeCollectionNameEmpty,
		CodeCollectionKindInvalid,
		CodeCollectionOwnerEmpty,
		CodeCollectionEntityNameEmpty:
		return codes.InvalidArgument

	// Unavailable - retryable infrastructure failures
	case CodeCollectionUnavailable,
		CodePromptUnavailable:
		return codes.Unavailable

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeAlreadyExists:
		return codes.AlreadyExists

	default:
		return codes.Internal
	}
}
