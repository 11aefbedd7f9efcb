package handler

import (
	"errors"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/service"
	"github.com/shubhamsonni/AI-Resume-Analyzer/pkg/response"
)

const maxResumeSize = 20 * 1024 * 1024 // 20MB

type SubmissionHandler struct {
	service   *service.SubmissionService
	validator *validator.Validate
}

func NewSubmissionHandler(svc *service.SubmissionService, v *validator.Validate) *SubmissionHandler {
	return &SubmissionHandler{
		service:   svc,
		validator: v,
	}
}

// Start handles POST /api/submissions. A missing resume file rejects the
// request before the pipeline is entered; the optional job-context fields
// default to empty strings.
func (h *SubmissionHandler) Start(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return response.ValidationError(c, "A resume file is required", nil)
	}

	if file.Size > maxResumeSize {
		return response.ValidationError(c, "File size exceeds 20MB limit", map[string]interface{}{
			"maxSize":  maxResumeSize,
			"fileSize": file.Size,
		})
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "application/pdf" {
		return response.ValidationError(c, "Only PDF resumes are supported", map[string]interface{}{
			"contentType": contentType,
		})
	}

	form := model.SubmissionForm{
		CompanyName:    c.FormValue("companyName"),
		JobTitle:       c.FormValue("jobTitle"),
		JobDescription: c.FormValue("jobDescription"),
	}
	if err := h.validator.Struct(&form); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return response.ServiceError(c, "Failed to read file")
	}

	result, err := h.service.StartSubmission(c.Context(), form, file.Filename, contentType, data)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// List handles GET /api/submissions
func (h *SubmissionHandler) List(c *fiber.Ctx) error {
	result, err := h.service.ListSubmissions(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Get handles GET /api/submissions/:id
func (h *SubmissionHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Submission ID is required", nil)
	}

	result, err := h.service.GetSubmissionDetail(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return response.NotFound(c, "Submission not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Status handles GET /api/submissions/:id/status. Unknown submissions read
// as idle, so this always answers 200.
func (h *SubmissionHandler) Status(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Submission ID is required", nil)
	}

	return response.OK(c, h.service.Status(id))
}

// Reset handles POST /api/submissions/:id/reset — the manual "try again"
// after a failed attempt. Artifacts and records already written stay in
// place.
func (h *SubmissionHandler) Reset(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Submission ID is required", nil)
	}

	h.service.ResetStatus(id)
	return response.OK(c, h.service.Status(id))
}

// Wipe handles DELETE /api/submissions
func (h *SubmissionHandler) Wipe(c *fiber.Ctx) error {
	result, err := h.service.Wipe(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
