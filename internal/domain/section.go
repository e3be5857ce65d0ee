package domain

import (
	"context"
	"time"
)

// Section is one editable category of portfolio content.
type Section string

const (
	SectionSkills      Section = "skills"
	SectionProjects    Section = "projects"
	SectionExperience  Section = "experience"
	SectionCredentials Section = "credentials"
	SectionContact     Section = "contact"
)

// AllSections is ordered as in the panel's sidebar.
var AllSections = []Section{
	SectionSkills,
	SectionProjects,
	SectionExperience,
	SectionContact,
	SectionCredentials,
}

type SectionInfo struct {
	ID          Section `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	HasImage    bool    `json:"has_image"`
}

var sectionCatalog = map[Section]SectionInfo{
	SectionSkills:      {SectionSkills, "Skills Section", "Technical skills and expertise", true},
	SectionProjects:    {SectionProjects, "Projects Section", "Portfolio projects and work", true},
	SectionExperience:  {SectionExperience, "Experience Section", "Work history and achievements", false},
	SectionContact:     {SectionContact, "Contact Section", "Contact information and form", true},
	SectionCredentials: {SectionCredentials, "Credentials Section", "Education and certifications", false},
}

func ParseSection(s string) (Section, bool) {
	section := Section(s)
	_, ok := sectionCatalog[section]
	return section, ok
}

func (s Section) Info() SectionInfo {
	return sectionCatalog[s]
}

func (s Section) HasImage() bool {
	return sectionCatalog[s].HasImage
}

// Table is the backing table; the section ids double as table names.
func (s Section) Table() string {
	return string(s)
}

// ImageFile is an uploaded image before resizing. Forms carry it under the "image" field.
type ImageFile struct {
	Filename string
	Data     []byte
}

// SectionForm is the set of field values the admin submits for one section.
type SectionForm interface {
	Section() Section
	// Values returns the text fields, keyed by their form names, for drafts.
	Values() map[string]string
	Image() *ImageFile
	SetImage(file *ImageFile)
	Row(ownerID, imageURL string) SectionRow
}

// SectionRow is one insert against a section table.
type SectionRow interface {
	Table() string
	Columns() []string
	Values() []any
}

type SaveMode string

const (
	SaveModeSync       SaveMode = "sync"
	SaveModeBackground SaveMode = "background"
)

type SaveResult struct {
	Section  Section  `json:"section"`
	Mode     SaveMode `json:"mode"`
	RowID    int64    `json:"row_id,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	TaskID   string   `json:"task_id,omitempty"`
	Message  string   `json:"-"`
}

type SectionRepository interface {
	Insert(ctx context.Context, row SectionRow) (int64, error)
	List(ctx context.Context, section Section, ownerID string) ([]map[string]any, error)
	Count(ctx context.Context, section Section) (int64, error)
	LastUpdated(ctx context.Context) (*time.Time, error)
}

// DraftStore keeps unsaved form values per owner and section.
type DraftStore interface {
	Get(ctx context.Context, ownerID string, section Section) (map[string]string, error)
	Put(ctx context.Context, ownerID string, section Section, values map[string]string) error
	Delete(ctx context.Context, ownerID string, section Section) error
}

type MediaService interface {
	UploadImage(ctx context.Context, ownerID string, section Section, file *ImageFile) (string, error)
}

type SectionUsecase interface {
	Save(ctx context.Context, ownerID string, form SectionForm) (*SaveResult, error)
	List(ctx context.Context, ownerID string, section Section) ([]map[string]any, error)
	GetDraft(ctx context.Context, ownerID string, section Section) (map[string]string, error)
	PutDraft(ctx context.Context, ownerID string, section Section, values map[string]string) error
	DiscardDraft(ctx context.Context, ownerID string, section Section) error
}
