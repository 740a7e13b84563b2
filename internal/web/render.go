// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/samber/oops"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/locale"
	"github.com/quizhub/quizhub/internal/quiz"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names.
const (
	pageIndex    = "index"
	pageLogin    = "login"
	pageRegister = "register"
	pageProfile  = "profile"
	pageTop      = "top"
	pageQuestion = "question"
)

var pageTitles = map[string]string{
	pageIndex:    "title_home",
	pageLogin:    "title_login",
	pageRegister: "title_register",
	pageProfile:  "title_profile",
	pageTop:      "title_leaderboard",
	pageQuestion: "title_question",
}

var langTags = [locale.Count]string{
	locale.English: "en",
	locale.Russian: "ru",
}

type localeOption struct {
	ID       locale.ID
	Name     string
	Selected bool
}

type scoreRow struct {
	Subject auth.Subject
	Points  int
}

type leaderRow struct {
	Rank     int
	Username string
	Scores   auth.Scores
	Total    int
}

type formValues struct {
	Username string
}

// pageData is the model every template receives.
type pageData struct {
	Title    string
	Lang     string
	Locale   locale.ID
	Locales  []localeOption
	Username string
	Errors   []string
	Form     formValues

	ScoreRows []scoreRow
	Total     int
	Leaders   []leaderRow
	Question  *quiz.View
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	funcs := template.FuncMap{"t": locale.Lookup}
	r := &renderer{pages: make(map[string]*template.Template, len(pageTitles))}
	for page := range pageTitles {
		tmpl, err := template.New(page).Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, oops.Code("WEB_TEMPLATE_INVALID").With("page", page).Wrap(err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// newPage fills the fields shared by every page.
func newPage(page string, id locale.ID, claims *auth.SessionClaims) pageData {
	data := pageData{
		Title:  pageTitles[page],
		Lang:   langTags[locale.Default],
		Locale: id,
	}
	if id.Valid() {
		data.Lang = langTags[id]
	}
	for _, other := range locale.All() {
		data.Locales = append(data.Locales, localeOption{ID: other, Name: other.Name(), Selected: other == id})
	}
	if claims != nil {
		data.Username = claims.Username
	}
	return data
}

// render executes page into a buffer so that template failures become a
// clean 500 instead of a truncated page.
func (r *renderer) render(w http.ResponseWriter, status int, page string, data pageData) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return oops.Code("WEB_TEMPLATE_MISSING").With("page", page).Errorf("no template for page %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return oops.Code("WEB_RENDER_FAILED").With("page", page).Wrap(err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err //nolint:wrapcheck // client went away
}
