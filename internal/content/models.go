package content

import (
	"errors"

	"jobpilot-admin/internal/shared/constants"
)

var ErrUnknownPage = errors.New("unknown content page")

type FAQ struct {
	ID          string `json:"id,omitempty"`
	MongoID     string `json:"_id,omitempty"`
	Question    string `json:"question"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

func (f FAQ) Identifier() string {
	if f.ID != "" {
		return f.ID
	}
	return f.MongoID
}

// Document is a singleton rich-text record: the privacy policy or one of
// the settings pages.
type Document struct {
	ID        string `json:"id,omitempty"`
	MongoID   string `json:"_id,omitempty"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (d Document) Identifier() string {
	if d.ID != "" {
		return d.ID
	}
	return d.MongoID
}

// Page is one of the settings pages, named by its upstream path
type Page string

const (
	PageAbout Page = "about"
	PageTerms Page = "term_condition"
	PageLegal Page = "legal"
)

var Pages = []Page{PageAbout, PageTerms, PageLegal}

type pageBinding struct {
	query    constants.QueryName
	mutation constants.Mutation
	title    string
}

var pageBindings = map[Page]pageBinding{
	PageAbout: {constants.QueryAboutUs, constants.MutationSaveAboutUs, "About us"},
	PageTerms: {constants.QueryTermsConditions, constants.MutationSaveTermsConditions, "Terms and conditions"},
	PageLegal: {constants.QueryLegalNotice, constants.MutationSaveLegalNotice, "Legal notice"},
}

func (p Page) binding() (pageBinding, error) {
	s, ok := pageBindings[p]
	if !ok {
		return pageBinding{}, ErrUnknownPage
	}
	return s, nil
}

func (p Page) path() string { return "/" + string(p) }
