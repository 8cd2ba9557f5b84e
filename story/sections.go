package story

import (
	"github.com/ByLCY/cvpress/layout"
	"github.com/ByLCY/cvpress/resume"
)

func (b *builder) header(story []layout.Flowable, r *resume.Resume) ([]layout.Flowable, error) {
	name, err := b.paragraph(r.Name, StyleName)
	if err != nil {
		return story, err
	}
	contact, err := b.paragraph(r.Contact, StyleContact)
	if err != nil {
		return story, err
	}
	links := &layout.Table{
		Rows: [][]layout.Flowable{{
			&layout.Image{Name: ImageGitHub},
			layout.NewParagraph(linkMarkup(r.GitHubURL), StyleLink),
			&layout.Image{Name: ImageLinkedIn},
			layout.NewParagraph(linkMarkup(r.LinkedInURL), StyleLink),
		}},
		ColWidths: []float64{6, 0, 6, 0},
		Style: layout.TableStyle{
			VAlign:  "middle",
			Align:   "left",
			Padding: layout.Padding{Right: 5},
		},
	}
	return append(story,
		name,
		contact,
		links,
		layout.HRule{Width: 100, Thickness: 1.5, Color: ColorHighlight, SpaceBefore: 6, SpaceAfter: 6},
	), nil
}

func (b *builder) education(story []layout.Flowable, r *resume.Resume) ([]layout.Flowable, error) {
	story = append(story, b.sectionTitle("education")...)
	for _, edu := range r.Education {
		p, err := b.paragraph(edu.Institution, StyleSubHeading)
		if err != nil {
			return story, err
		}
		story = append(story, p)
		optional := []struct{ value, style string }{
			{edu.Degree, StyleItalic},
			{edu.Date, StyleItalic},
			{edu.Description, StyleNormalText},
		}
		for _, f := range optional {
			if f.value == "" {
				continue
			}
			p, err := b.paragraph(f.value, f.style)
			if err != nil {
				return story, err
			}
			story = append(story, p)
		}
	}
	return story, nil
}

func (b *builder) experience(story []layout.Flowable, r *resume.Resume) ([]layout.Flowable, error) {
	story = append(story, sectionSpacer())
	story = append(story, b.sectionTitle("experience")...)
	for _, exp := range r.Experience {
		for _, f := range []struct{ value, style string }{
			{exp.Company, StyleSubHeading},
			{exp.Role, StyleItalic},
			{exp.Period, StyleItalic},
		} {
			p, err := b.paragraph(f.value, f.style)
			if err != nil {
				return story, err
			}
			story = append(story, p)
		}
		for _, detail := range exp.Details {
			text, err := b.text(detail)
			if err != nil {
				return story, err
			}
			story = append(story, layout.NewParagraph(Bullet+text, StyleBulletItem))
		}
	}
	return story, nil
}

func (b *builder) projects(story []layout.Flowable, r *resume.Resume) ([]layout.Flowable, error) {
	if len(r.ProjectsVolunteering) == 0 {
		return story, nil
	}
	story = append(story, sectionSpacer())
	story = append(story, b.sectionTitle("projects")...)
	for _, project := range r.ProjectsVolunteering {
		label := ""
		if l := project.Label(); l != "" {
			text, err := b.text(l)
			if err != nil {
				return story, err
			}
			label = text + ":"
		}
		p, err := b.prefixed(label, project.Description)
		if err != nil {
			return story, err
		}
		story = append(story, p)
	}
	return story, nil
}

func (b *builder) extras(story []layout.Flowable, r *resume.Resume) ([]layout.Flowable, error) {
	story = append(story, sectionSpacer())
	story = append(story, b.sectionTitle("extras")...)
	for _, f := range []struct{ key, value string }{
		{"certifications", r.Certifications},
		{"skills", r.Skills},
		{"interests", r.Interests},
	} {
		p, err := b.prefixed(b.label(f.key), f.value)
		if err != nil {
			return story, err
		}
		story = append(story, p)
	}
	return story, nil
}
