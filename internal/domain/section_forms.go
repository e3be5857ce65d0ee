package domain

import (
	"fmt"
	"strings"
)

// NewSectionForm returns an empty form for binding.
func NewSectionForm(section Section) (SectionForm, error) {
	switch section {
	case SectionSkills:
		return &SkillForm{}, nil
	case SectionProjects:
		return &ProjectForm{}, nil
	case SectionExperience:
		return &ExperienceForm{}, nil
	case SectionCredentials:
		return &CredentialForm{}, nil
	case SectionContact:
		return &ContactForm{}, nil
	}
	return nil, fmt.Errorf("unknown section: %s", section)
}

// FormFromValues rebuilds a form from draft values.
func FormFromValues(section Section, values map[string]string) (SectionForm, error) {
	form, err := NewSectionForm(section)
	if err != nil {
		return nil, err
	}
	switch f := form.(type) {
	case *SkillForm:
		f.Skill = values["skill"]
	case *ProjectForm:
		f.Type = values["type"]
		f.Title = values["title"]
		f.Description = values["description"]
		f.VideoURL = values["video_url"]
		f.GitHubURL = values["github_url"]
		f.TechStack = values["tech_stack"]
		f.Responsibilities = values["responsibilities"]
	case *ExperienceForm:
		f.Role = values["role"]
		f.CompanyDuration = values["company_duration"]
		f.Skills = values["skills"]
		f.AboutCompany = values["about_company"]
		f.Responsibilities = values["responsibilities"]
	case *CredentialForm:
		f.Type = values["type"]
		f.Description = values["description"]
	case *ContactForm:
		f.Title = values["title"]
	}
	return form, nil
}

type SkillForm struct {
	Skill string     `json:"skill" form:"skill" validate:"not_blank"`
	File  *ImageFile `json:"-" form:"image" validate:"required"`
}

func (f *SkillForm) Section() Section         { return SectionSkills }
func (f *SkillForm) Image() *ImageFile        { return f.File }
func (f *SkillForm) SetImage(file *ImageFile) { f.File = file }

func (f *SkillForm) Values() map[string]string {
	return map[string]string{"skill": f.Skill}
}

func (f *SkillForm) Row(ownerID, imageURL string) SectionRow {
	return &Skill{Skill: strings.TrimSpace(f.Skill), ImageURL: imageURL, OwnerID: ownerID}
}

// ProjectForm: VideoURL and Description are optional.
type ProjectForm struct {
	Type             string     `json:"type" form:"type" validate:"not_blank,oneof=Solo Team"`
	Title            string     `json:"title" form:"title" validate:"not_blank"`
	Description      string     `json:"description" form:"description"`
	VideoURL         string     `json:"video_url" form:"video_url" validate:"omitempty,url"`
	GitHubURL        string     `json:"github_url" form:"github_url" validate:"not_blank,url"`
	TechStack        string     `json:"tech_stack" form:"tech_stack" validate:"not_blank"`
	Responsibilities string     `json:"responsibilities" form:"responsibilities" validate:"not_blank"`
	File             *ImageFile `json:"-" form:"image" validate:"required"`
}

func (f *ProjectForm) Section() Section         { return SectionProjects }
func (f *ProjectForm) Image() *ImageFile        { return f.File }
func (f *ProjectForm) SetImage(file *ImageFile) { f.File = file }

func (f *ProjectForm) Values() map[string]string {
	return map[string]string{
		"type":             f.Type,
		"title":            f.Title,
		"description":      f.Description,
		"video_url":        f.VideoURL,
		"github_url":       f.GitHubURL,
		"tech_stack":       f.TechStack,
		"responsibilities": f.Responsibilities,
	}
}

func (f *ProjectForm) Row(ownerID, imageURL string) SectionRow {
	p := &Project{
		Type:             strings.TrimSpace(f.Type),
		Title:            strings.TrimSpace(f.Title),
		Description:      strings.TrimSpace(f.Description),
		ImageURL:         imageURL,
		GitHubURL:        strings.TrimSpace(f.GitHubURL),
		TechStack:        strings.TrimSpace(f.TechStack),
		Responsibilities: strings.TrimSpace(f.Responsibilities),
		OwnerID:          ownerID,
	}
	if v := strings.TrimSpace(f.VideoURL); v != "" {
		p.VideoURL = &v
	}
	return p
}

type ExperienceForm struct {
	Role             string `json:"role" form:"role" validate:"not_blank"`
	CompanyDuration  string `json:"company_duration" form:"company_duration" validate:"not_blank"`
	Skills           string `json:"skills" form:"skills" validate:"not_blank"`
	AboutCompany     string `json:"about_company" form:"about_company" validate:"not_blank"`
	Responsibilities string `json:"responsibilities" form:"responsibilities" validate:"not_blank"`
}

func (f *ExperienceForm) Section() Section    { return SectionExperience }
func (f *ExperienceForm) Image() *ImageFile   { return nil }
func (f *ExperienceForm) SetImage(*ImageFile) {}

func (f *ExperienceForm) Values() map[string]string {
	return map[string]string{
		"role":             f.Role,
		"company_duration": f.CompanyDuration,
		"skills":           f.Skills,
		"about_company":    f.AboutCompany,
		"responsibilities": f.Responsibilities,
	}
}

func (f *ExperienceForm) Row(ownerID, _ string) SectionRow {
	return &Experience{
		Role:             strings.TrimSpace(f.Role),
		CompanyDuration:  strings.TrimSpace(f.CompanyDuration),
		Skills:           strings.TrimSpace(f.Skills),
		AboutCompany:     strings.TrimSpace(f.AboutCompany),
		Responsibilities: strings.TrimSpace(f.Responsibilities),
		OwnerID:          ownerID,
	}
}

type CredentialForm struct {
	Type        string `json:"type" form:"type" validate:"not_blank,oneof=course certification degree"`
	Description string `json:"description" form:"description" validate:"not_blank"`
}

func (f *CredentialForm) Section() Section    { return SectionCredentials }
func (f *CredentialForm) Image() *ImageFile   { return nil }
func (f *CredentialForm) SetImage(*ImageFile) {}

func (f *CredentialForm) Values() map[string]string {
	return map[string]string{"type": f.Type, "description": f.Description}
}

func (f *CredentialForm) Row(ownerID, _ string) SectionRow {
	return &Certification{
		Type:        strings.TrimSpace(f.Type),
		Description: strings.TrimSpace(f.Description),
		OwnerID:     ownerID,
	}
}
