package v1

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"portfolio-admin-backend/internal/delivery/http/response"
	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/apperror"
	"portfolio-admin-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type SectionHandler struct {
	sectionUC domain.SectionUsecase
}

func NewSectionHandler(protected *gin.RouterGroup, sectionUC domain.SectionUsecase) {
	handler := &SectionHandler{sectionUC: sectionUC}

	sections := protected.Group("/sections")
	{
		sections.GET("", handler.Catalog)
		sections.GET("/:section", handler.List)
		sections.POST("/:section", handler.Save)
		sections.GET("/:section/draft", handler.GetDraft)
		sections.PUT("/:section/draft", handler.PutDraft)
		sections.DELETE("/:section/draft", handler.DiscardDraft)
	}
}

func sectionParam(c *gin.Context) (domain.Section, bool) {
	section, ok := domain.ParseSection(c.Param("section"))
	if !ok {
		c.Error(apperror.NotFound(fmt.Sprintf("Unknown section %q", c.Param("section"))))
	}
	return section, ok
}

// Catalog godoc
// @Summary      Section catalog
// @Description  The editable sections in sidebar order.
// @Tags         sections
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.SectionInfo}
// @Router       /sections [get]
func (h *SectionHandler) Catalog(c *gin.Context) {
	infos := make([]domain.SectionInfo, 0, len(domain.AllSections))
	for _, s := range domain.AllSections {
		infos = append(infos, s.Info())
	}
	response.Quiet(c, http.StatusOK, infos)
}

// List godoc
// @Summary      List section rows
// @Description  Rows the signed-in admin created in a section, newest first.
// @Tags         sections
// @Produce      json
// @Security     BearerAuth
// @Param        section  path      string  true  "skills, projects, experience, credentials or contact"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /sections/{section} [get]
func (h *SectionHandler) List(c *gin.Context) {
	section, ok := sectionParam(c)
	if !ok {
		return
	}
	rows, err := h.sectionUC.List(c.Request.Context(), c.GetString(string(domain.KeyUserID)), section)
	if err != nil {
		c.Error(err)
		return
	}
	response.Quiet(c, http.StatusOK, rows)
}

// Save godoc
// @Summary      Save a section entry
// @Description  Validates every field, uploads the image when the section has one and inserts one row.
// @Description  Accepts multipart/form-data (image in the "image" part) or JSON without an image.
// @Description  Returns 202 with a task id when the section is saved in the background.
// @Tags         sections
// @Accept       mpfd
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        section  path      string  true  "skills, projects, experience, credentials or contact"
// @Param        image    formData  file    false "Section image"
// @Success      201      {object}  response.Response{data=domain.SaveResult}
// @Success      202      {object}  response.Response{data=domain.SaveResult}
// @Failure      422      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /sections/{section} [post]
func (h *SectionHandler) Save(c *gin.Context) {
	section, ok := sectionParam(c)
	if !ok {
		return
	}

	form, err := bindSectionForm(c, section)
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.sectionUC.Save(c.Request.Context(), c.GetString(string(domain.KeyUserID)), form)
	if err != nil {
		c.Error(err)
		return
	}

	code := http.StatusCreated
	if result.Mode == domain.SaveModeBackground {
		code = http.StatusAccepted
	}
	response.Success(c, code, result.Message, result)
}

// bindSectionForm reads the section's text fields and the optional "image" part.
func bindSectionForm(c *gin.Context, section domain.Section) (domain.SectionForm, error) {
	blank, err := domain.NewSectionForm(section)
	if err != nil {
		return nil, apperror.NotFound(err.Error())
	}

	values := map[string]string{}
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&values); err != nil {
			return nil, apperror.BadRequest("Invalid JSON body: " + err.Error())
		}
	} else {
		for key := range blank.Values() {
			values[key] = c.PostForm(key)
		}
	}

	form, err := domain.FormFromValues(section, values)
	if err != nil {
		return nil, apperror.NotFound(err.Error())
	}

	if section.HasImage() {
		file, err := readImage(c)
		if err != nil {
			return nil, err
		}
		form.SetImage(file)
	}
	return form, nil
}

// readImage returns nil when no image part was sent; validation reports it.
func readImage(c *gin.Context) (*domain.ImageFile, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	if header.Size > security.MaxImageBytes {
		return nil, apperror.UploadFailed(fmt.Errorf("file exceeds the 10 MB limit"))
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperror.UploadFailed(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, security.MaxImageBytes+1))
	if err != nil {
		return nil, apperror.UploadFailed(err)
	}
	return &domain.ImageFile{Filename: header.Filename, Data: data}, nil
}

// GetDraft godoc
// @Summary      Get the unsaved form values of a section
// @Tags         sections
// @Produce      json
// @Security     BearerAuth
// @Param        section  path      string  true  "Section"
// @Success      200      {object}  response.Response
// @Router       /sections/{section}/draft [get]
func (h *SectionHandler) GetDraft(c *gin.Context) {
	section, ok := sectionParam(c)
	if !ok {
		return
	}
	values, err := h.sectionUC.GetDraft(c.Request.Context(), c.GetString(string(domain.KeyUserID)), section)
	if err != nil {
		c.Error(err)
		return
	}
	response.Quiet(c, http.StatusOK, values)
}

// PutDraft godoc
// @Summary      Store the unsaved form values of a section
// @Tags         sections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        section  path      string             true  "Section"
// @Param        values   body      map[string]string  true  "Field values"
// @Success      200      {object}  response.Response
// @Router       /sections/{section}/draft [put]
func (h *SectionHandler) PutDraft(c *gin.Context) {
	section, ok := sectionParam(c)
	if !ok {
		return
	}
	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		c.Error(apperror.BadRequest("Invalid JSON body: " + err.Error()))
		return
	}
	if err := h.sectionUC.PutDraft(c.Request.Context(), c.GetString(string(domain.KeyUserID)), section, values); err != nil {
		c.Error(err)
		return
	}
	response.Quiet(c, http.StatusOK, nil)
}

// DiscardDraft godoc
// @Summary      Clear the unsaved form values of a section
// @Tags         sections
// @Produce      json
// @Security     BearerAuth
// @Param        section  path      string  true  "Section"
// @Success      200      {object}  response.Response
// @Router       /sections/{section}/draft [delete]
func (h *SectionHandler) DiscardDraft(c *gin.Context) {
	section, ok := sectionParam(c)
	if !ok {
		return
	}
	if err := h.sectionUC.DiscardDraft(c.Request.Context(), c.GetString(string(domain.KeyUserID)), section); err != nil {
		c.Error(err)
		return
	}
	response.Quiet(c, http.StatusOK, nil)
}
