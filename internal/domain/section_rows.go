package domain

type Skill struct {
	Skill    string `json:"skill"`
	ImageURL string `json:"image_url"`
	OwnerID  string `json:"user_id"`
}

func (s *Skill) Table() string     { return SectionSkills.Table() }
func (s *Skill) Columns() []string { return []string{"skill", "image_url", "user_id"} }
func (s *Skill) Values() []any     { return []any{s.Skill, s.ImageURL, s.OwnerID} }

type Project struct {
	Type             string  `json:"type"` // Solo or Team
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	ImageURL         string  `json:"image_url"`
	VideoURL         *string `json:"video_url"`
	GitHubURL        string  `json:"github_url"`
	TechStack        string  `json:"tech_stack"`
	Responsibilities string  `json:"responsibilities"`
	OwnerID          string  `json:"user_id"`
}

func (p *Project) Table() string { return SectionProjects.Table() }

func (p *Project) Columns() []string {
	return []string{"type", "title", "description", "image_url", "video_url", "github_url", "tech_stack", "responsibilities", "user_id"}
}

func (p *Project) Values() []any {
	return []any{p.Type, p.Title, p.Description, p.ImageURL, p.VideoURL, p.GitHubURL, p.TechStack, p.Responsibilities, p.OwnerID}
}

type Experience struct {
	Role             string `json:"role"`
	CompanyDuration  string `json:"company_duration"` // e.g. "Tech Solutions Inc. (2020-2023)"
	Skills           string `json:"skills"`
	AboutCompany     string `json:"about_company"`
	Responsibilities string `json:"responsibilities"`
	OwnerID          string `json:"user_id"`
}

func (e *Experience) Table() string { return SectionExperience.Table() }

func (e *Experience) Columns() []string {
	return []string{"role", "company_duration", "skills", "about_company", "responsibilities", "user_id"}
}

func (e *Experience) Values() []any {
	return []any{e.Role, e.CompanyDuration, e.Skills, e.AboutCompany, e.Responsibilities, e.OwnerID}
}

// Certification is a row of the credentials section, not a login credential.
type Certification struct {
	Type        string `json:"type"` // course, certification or degree
	Description string `json:"description"`
	OwnerID     string `json:"user_id"`
}

func (c *Certification) Table() string     { return SectionCredentials.Table() }
func (c *Certification) Columns() []string { return []string{"type", "description", "user_id"} }
func (c *Certification) Values() []any     { return []any{c.Type, c.Description, c.OwnerID} }
