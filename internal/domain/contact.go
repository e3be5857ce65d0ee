package domain

import "strings"

type ContactForm struct {
	Title string     `json:"title" form:"title" validate:"not_blank"`
	File  *ImageFile `json:"-" form:"image" validate:"required"`
}

func (f *ContactForm) Section() Section         { return SectionContact }
func (f *ContactForm) Image() *ImageFile        { return f.File }
func (f *ContactForm) SetImage(file *ImageFile) { f.File = file }

func (f *ContactForm) Values() map[string]string {
	return map[string]string{"title": f.Title}
}

func (f *ContactForm) Row(ownerID, imageURL string) SectionRow {
	return &ContactMedia{ImageURL: imageURL, Title: strings.TrimSpace(f.Title), OwnerID: ownerID}
}

// ContactMedia is a social-media tile shown in the contact section.
type ContactMedia struct {
	ImageURL string `json:"image_url"`
	Title    string `json:"title"`
	OwnerID  string `json:"user_id"`
}

func (c *ContactMedia) Table() string     { return SectionContact.Table() }
func (c *ContactMedia) Columns() []string { return []string{"image_url", "title", "user_id"} }
func (c *ContactMedia) Values() []any     { return []any{c.ImageURL, c.Title, c.OwnerID} }
