package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"infolock/internal/service"
)

type createShareRequest struct {
	DocumentID string `json:"documentId"`
	IsPublic   bool   `json:"isPublic"`
	ExpiryDays *int   `json:"expiryDays"`
	MaxViews   *int   `json:"maxViews"`
}

type togglePublicRequest struct {
	IsPublic bool `json:"isPublic"`
}

// CreateShareLink issues a share link for a document the caller owns.
//
// @Summary Create a share link
// @Tags share
// @Router /api/documents/share [post]
func CreateShareLink(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createShareRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if _, err := uuid.Parse(req.DocumentID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid document id")
		}

		owned, err := svc.IsOwner(c.UserContext(), req.DocumentID, usernameFromCtx(c))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if !owned {
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "you do not own this document")
		}

		res, err := svc.Create(c.UserContext(), req.DocumentID, req.IsPublic, req.ExpiryDays, req.MaxViews)
		if err != nil {
			if errors.Is(err, service.ErrDocumentNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// ViewSharedDocument resolves a share token and streams the document inline.
// This endpoint is public: the token is the only credential.
//
// @Summary View a shared document
// @Tags share
// @Router /api/documents/share/{token} [get]
func ViewSharedDocument(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := c.Params("token")
		if tok == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_TOKEN", "token is required")
		}

		rc, doc, err := svc.Resolve(c.UserContext(), tok)
		if err != nil {
			if errors.Is(err, service.ErrLinkNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "share link not found or expired")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if rc == nil {
			return c.SendStatus(fiber.StatusNoContent)
		}

		c.Set(fiber.HeaderContentType, doc.FileType)
		c.Set(fiber.HeaderContentDisposition, contentDisposition("inline", doc.FileName))
		return c.SendStream(rc, int(doc.FileSize))
	}
}

// DeactivateShareLink soft-deletes the link behind a token. Unknown tokens
// succeed as a no-op, so revocation is idempotent.
//
// @Summary Deactivate a share link
// @Tags share
// @Router /api/documents/share/{token} [delete]
func DeactivateShareLink(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := c.Params("token")
		if tok == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_TOKEN", "token is required")
		}
		if err := svc.Deactivate(c.UserContext(), tok); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"message": "share link deactivated"})
	}
}

// IsDocumentPublic reports whether a document carries a public share link.
//
// @Summary Check document public state
// @Tags share
// @Router /api/documents/{id}/is-public [get]
func IsDocumentPublic(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		public, err := svc.IsPublic(c.UserContext(), id)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(public)
	}
}

// ToggleDocumentPublic flips a document's public flag. Only the owner may
// toggle.
//
// @Summary Toggle document public state
// @Tags share
// @Router /api/documents/{id}/toggle-public [put]
func ToggleDocumentPublic(svc service.ShareService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req togglePublicRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		owned, err := svc.IsOwner(c.UserContext(), id, usernameFromCtx(c))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if !owned {
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "you do not own this document")
		}

		if err := svc.TogglePublic(c.UserContext(), id, req.IsPublic); err != nil {
			if errors.Is(err, service.ErrDocumentNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"isPublic": req.IsPublic})
	}
}
