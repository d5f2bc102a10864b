package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"infolock/internal/http/middleware"
	"infolock/internal/service"
)

// ownerFromCtx returns the authenticated user's ID stored by middleware.BearerAuth.
func ownerFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(middleware.UserIDLocalKey).(string); ok {
		return v
	}
	return ""
}

func usernameFromCtx(c *fiber.Ctx) string {
	if v, ok := c.Locals(middleware.UsernameLocalKey).(string); ok {
		return v
	}
	return ""
}

// sanitizeFilename strips path separators and quotes so the name is safe to
// echo into a Content-Disposition header.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, `"`, "")
	if name == "" {
		name = "download"
	}
	return name
}

func contentDisposition(kind, filename string) string {
	return fmt.Sprintf(`%s; filename="%s"`, kind, sanitizeFilename(filename))
}

// UploadDocument accepts a multipart upload (field name: file) with an
// optional category form value.
//
// @Summary Upload a document
// @Tags documents
// @Router /api/documents/upload [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Upload(c.UserContext(), f, fh.Size, ct, c.FormValue("category"), fh.Filename, ownerFromCtx(c))
		if err != nil {
			if errors.Is(err, service.ErrEmptyFile) {
				return writeError(c, fiber.StatusBadRequest, "EMPTY_FILE", "file cannot be empty")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// ListDocuments returns all documents owned by the caller.
//
// @Summary List own documents
// @Tags documents
// @Router /api/documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.List(c.UserContext(), ownerFromCtx(c))
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(docs)
	}
}

// ListDocumentsByCategory returns the caller's documents filtered by category.
//
// @Summary List own documents in a category
// @Tags documents
// @Router /api/documents/category/{category} [get]
func ListDocumentsByCategory(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := c.Params("category")
		if category == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CATEGORY", "category is required")
		}
		docs, err := svc.ListByCategory(c.UserContext(), ownerFromCtx(c), category)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(docs)
	}
}

// GetDocument returns the metadata of a single owned document.
//
// @Summary Get document metadata
// @Tags documents
// @Router /api/documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id, ownerFromCtx(c))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// DownloadDocument streams the document content as an attachment.
//
// @Summary Download document content
// @Tags documents
// @Router /api/documents/download/{id} [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return sendContent(svc, "attachment")
}

// ViewDocument streams the document content inline for in-browser display.
//
// @Summary View document content inline
// @Tags documents
// @Router /api/documents/view/{id} [get]
func ViewDocument(svc service.DocumentService) fiber.Handler {
	return sendContent(svc, "inline")
}

func sendContent(svc service.DocumentService, disposition string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, doc, err := svc.Download(c.UserContext(), id, ownerFromCtx(c))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if rc == nil {
			return c.SendStatus(fiber.StatusNoContent)
		}

		c.Set(fiber.HeaderContentType, doc.FileType)
		c.Set(fiber.HeaderContentDisposition, contentDisposition(disposition, doc.FileName))
		return c.SendStream(rc, int(doc.FileSize))
	}
}

// UpdateDocument replaces the present fields of an owned document. The request
// is multipart: an optional file part plus optional fileName/category values.
//
// @Summary Update a document
// @Tags documents
// @Router /api/documents/{id} [put]
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		in := service.UpdateInput{
			ID:       id,
			OwnerID:  ownerFromCtx(c),
			FileName: c.FormValue("fileName"),
			Category: c.FormValue("category"),
		}

		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			in.File = f
			in.Size = fh.Size
			in.ContentType = ct
		}

		doc, err := svc.Update(c.UserContext(), in)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes an owned document and its stored content.
//
// @Summary Delete a document
// @Tags documents
// @Router /api/documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id, ownerFromCtx(c)); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
