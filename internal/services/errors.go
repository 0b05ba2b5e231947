package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/docqa-backend/internal/platform/apierr"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrExtractionFailed = errors.New("extraction failed")
	ErrStorage          = errors.New("storage failed")
	ErrEmbedding        = errors.New("embedding failed")
	ErrRetrieval        = errors.New("retrieval failed")
	ErrGeneration       = errors.New("generation failed")
	ErrNotFound         = errors.New("not found")
	ErrNoDocuments      = errors.New("no documents")
)

// kindError carries a client-facing message while matching both its kind
// sentinel and its cause under errors.Is.
type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func fail(status int, code string, kind error, msg string, cause error) *apierr.Error {
	return apierr.New(status, code, &kindError{kind: kind, msg: msg, cause: cause})
}

func validationErr(msg string) error {
	return fail(http.StatusBadRequest, "validation", ErrValidation, msg, nil)
}

func notFoundErr(msg string) error {
	return fail(http.StatusNotFound, "not_found", ErrNotFound, msg, nil)
}

func noDocumentsErr() error {
	return fail(http.StatusNotFound, "no_documents", ErrNoDocuments, "No documents found. Please upload a PDF first.", nil)
}

func extractionErr(cause error) error {
	return fail(http.StatusInternalServerError, "extraction_failed", ErrExtractionFailed, "Error extracting text from PDF", cause)
}

func storageErr(msg string, cause error) error {
	return fail(http.StatusInternalServerError, "storage_failed", ErrStorage, msg, cause)
}

func embeddingErr(cause error) error {
	return fail(http.StatusInternalServerError, "embedding_failed", ErrEmbedding, "Error creating vector store", cause)
}

func retrievalErr(cause error) error {
	return fail(http.StatusInternalServerError, "retrieval_failed", ErrRetrieval, "Error retrieving context", cause)
}

func generationErr(cause error) error {
	return fail(http.StatusInternalServerError, "generation_failed", ErrGeneration, "Error processing question", cause)
}
