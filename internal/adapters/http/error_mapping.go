package httpadapter

import (
	"net/http"

	"github.com/docufill/docufill/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound),
		domain.IsKind(err, domain.ErrConversationNotFound),
		domain.IsKind(err, domain.ErrPlaceholderNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrInvalidStatus):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary),
		domain.IsKind(err, domain.ErrCapability):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
