// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package web

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/samber/oops"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/locale"
	"github.com/quizhub/quizhub/internal/logging"
	"github.com/quizhub/quizhub/internal/observability"
	"github.com/quizhub/quizhub/internal/quiz"
	"github.com/quizhub/quizhub/pkg/errutil"
)

// Authenticator runs the login, registration and locale flows.
type Authenticator interface {
	Login(ctx context.Context, username, password string, id locale.ID) (string, error)
	Register(ctx context.Context, username, password string, id locale.ID) (string, error)
	ChangeLocale(username string, id locale.ID) (string, error)
}

// Scoreboard reads scores for the profile and leaderboard pages.
type Scoreboard interface {
	GetScores(ctx context.Context, username string) (*auth.ScoreEntry, error)
	TopScores(ctx context.Context, limit int) ([]auth.ScoreEntry, error)
}

// Quiz serves and checks questions.
type Quiz interface {
	Next(id locale.ID) quiz.View
	Answer(ctx context.Context, username string, topic auth.Subject, idx int, answer string) (quiz.Result, error)
}

// Deps are the collaborators of Handler.
type Deps struct {
	Auth   Authenticator
	Tokens TokenDecoder
	Scores Scoreboard
	Quiz   Quiz
}

// Handler serves the QuizHub pages.
type Handler struct {
	deps         Deps
	pages        *renderer
	logger       *slog.Logger
	metrics      *observability.Metrics
	cookieSecure bool
	topLimit     int
	middleware   []logging.MiddlewareOption
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithMetrics records auth and quiz outcomes and route latencies.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) { h.cookieSecure = secure }
}

// WithTopLimit sets the number of leaderboard rows.
func WithTopLimit(n int) Option {
	return func(h *Handler) { h.topLimit = n }
}

// WithRequestLogOptions passes options to the request logging middleware.
func WithRequestLogOptions(opts ...logging.MiddlewareOption) Option {
	return func(h *Handler) { h.middleware = append(h.middleware, opts...) }
}

// NewHandler creates a Handler. All Deps are required.
func NewHandler(deps Deps, opts ...Option) (*Handler, error) {
	if deps.Auth == nil {
		return nil, oops.Errorf("authenticator is required")
	}
	if deps.Tokens == nil {
		return nil, oops.Errorf("token decoder is required")
	}
	if deps.Scores == nil {
		return nil, oops.Errorf("scoreboard is required")
	}
	if deps.Quiz == nil {
		return nil, oops.Errorf("quiz is required")
	}

	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		deps:   deps,
		pages:  pages,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return h, nil
}

// Routes returns the router with request logging and sessions applied.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()

	h.handle(r, "/", http.HandlerFunc(h.index), http.MethodGet)
	h.handle(r, "/login", h.form(pageLogin), http.MethodGet)
	h.handle(r, "/register", h.form(pageRegister), http.MethodGet)
	h.handle(r, "/login-processing", http.HandlerFunc(h.loginProcessing), http.MethodPost)
	h.handle(r, "/register-processing", http.HandlerFunc(h.registerProcessing), http.MethodPost)
	h.handle(r, "/profile", RequireSession(http.HandlerFunc(h.profile)), http.MethodGet)
	h.handle(r, "/top", http.HandlerFunc(h.top), http.MethodGet)
	h.handle(r, "/logout", http.HandlerFunc(h.logout), http.MethodPost)
	h.handle(r, "/lang-change", RequireSession(http.HandlerFunc(h.langChange)), http.MethodPost)
	h.handle(r, "/answer", http.HandlerFunc(h.answer), http.MethodGet)
	h.handle(r, "/answer-check", http.HandlerFunc(h.answerCheck), http.MethodPost)

	static, _ := fs.Sub(staticFS, "static") //nolint:errcheck // embedded directory always exists
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServerFS(static))).Methods(http.MethodGet)

	r.Use(SessionMiddleware(h.deps.Tokens))
	return logging.Middleware(h.logger, h.middleware...)(r)
}

func (h *Handler) handle(r *mux.Router, path string, next http.Handler, method string) {
	if h.metrics != nil {
		next = h.metrics.InstrumentRoute(path, next)
	}
	r.Handle(path, next).Methods(method)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	claims, _ := SessionFromContext(r.Context())
	h.show(w, r, http.StatusOK, newPage(pageIndex, RequestLocale(r.Context()), claims), pageIndex)
}

func (h *Handler) form(page string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := SessionFromContext(r.Context())
		h.show(w, r, http.StatusOK, newPage(page, RequestLocale(r.Context()), claims), page)
	})
}

func (h *Handler) loginProcessing(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentialsForm(w, r)
	if !ok {
		return
	}
	id := RequestLocale(r.Context())

	token, err := h.deps.Auth.Login(r.Context(), username, password, id)
	if err != nil {
		h.recordLogin(authResult(err))
		h.credentialsFailed(w, r, pageLogin, username, err)
		return
	}
	h.recordLogin(observability.ResultSuccess)
	setSessionCookie(w, token, h.cookieSecure)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *Handler) registerProcessing(w http.ResponseWriter, r *http.Request) {
	username, password, ok := credentialsForm(w, r)
	if !ok {
		return
	}
	id := RequestLocale(r.Context())

	token, err := h.deps.Auth.Register(r.Context(), username, password, id)
	if err != nil {
		h.recordRegistration(authResult(err))
		h.credentialsFailed(w, r, pageRegister, username, err)
		return
	}
	h.recordRegistration(observability.ResultSuccess)
	setSessionCookie(w, token, h.cookieSecure)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// credentialsFailed re-renders a credentials form with every message for err.
func (h *Handler) credentialsFailed(w http.ResponseWriter, r *http.Request, page, username string, err error) {
	id := RequestLocale(r.Context())
	claims, _ := SessionFromContext(r.Context())
	data := newPage(page, id, claims)
	data.Errors = locale.Texts(auth.MessageKeys(err), id)
	data.Form.Username = username

	status := http.StatusOK
	if errors.Is(err, auth.ErrStoreUnavailable) {
		status = http.StatusInternalServerError
	}
	h.show(w, r, status, data, page)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	claims, _ := SessionFromContext(r.Context())
	id := RequestLocale(r.Context())

	entry, err := h.deps.Scores.GetScores(r.Context(), claims.Username)
	if errors.Is(err, auth.ErrNotFound) {
		clearSessionCookie(w, h.cookieSecure)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.serverError(w, r, "load profile scores", err)
		return
	}

	data := newPage(pageProfile, id, claims)
	for _, subj := range auth.Subjects() {
		data.ScoreRows = append(data.ScoreRows, scoreRow{Subject: subj, Points: entry.Scores.Get(subj)})
	}
	data.Total = entry.Scores.Total()
	h.show(w, r, http.StatusOK, data, pageProfile)
}

func (h *Handler) top(w http.ResponseWriter, r *http.Request) {
	claims, _ := SessionFromContext(r.Context())

	entries, err := h.deps.Scores.TopScores(r.Context(), h.topLimit)
	if err != nil {
		h.serverError(w, r, "load leaderboard", err)
		return
	}

	data := newPage(pageTop, RequestLocale(r.Context()), claims)
	for i, e := range entries {
		data.Leaders = append(data.Leaders, leaderRow{
			Rank:     i + 1,
			Username: e.Username,
			Scores:   e.Scores,
			Total:    e.Scores.Total(),
		})
	}
	h.show(w, r, http.StatusOK, data, pageTop)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, h.cookieSecure)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) langChange(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	raw := r.PostFormValue("lang_id")
	if raw == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	id, err := locale.ParseID(raw)
	if err != nil {
		http.Error(w, "unsupported language", http.StatusBadRequest)
		return
	}

	claims, _ := SessionFromContext(r.Context())
	token, err := h.deps.Auth.ChangeLocale(claims.Username, id)
	if err != nil {
		h.serverError(w, r, "change locale", err)
		return
	}
	setSessionCookie(w, token, h.cookieSecure)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	claims, _ := SessionFromContext(r.Context())
	id := RequestLocale(r.Context())

	view := h.deps.Quiz.Next(id)
	data := newPage(pageQuestion, id, claims)
	data.Question = &view
	h.show(w, r, http.StatusOK, data, pageQuestion)
}

// answerCheck redirects to the next question on a correct answer and to
// the login page on a wrong one.
func (h *Handler) answerCheck(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	topic, err := auth.ParseSubject(r.PostFormValue("topic"))
	if err != nil {
		http.Error(w, "unknown topic", http.StatusBadRequest)
		return
	}
	idx, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("qstn_id")))
	if err != nil {
		http.Error(w, "malformed question id", http.StatusBadRequest)
		return
	}

	var username string
	if claims, ok := SessionFromContext(r.Context()); ok {
		username = claims.Username
	}

	result, err := h.deps.Quiz.Answer(r.Context(), username, topic, idx, r.PostFormValue("answer"))
	if errors.Is(err, quiz.ErrUnknownQuestion) {
		http.Error(w, "unknown question", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.serverError(w, r, "check answer", err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAnswer(string(topic), result.Correct)
	}
	if result.Correct {
		http.Redirect(w, r, "/answer", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func credentialsForm(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return "", "", false
	}
	return r.PostFormValue("username"), r.PostFormValue("password"), true
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request, status int, data pageData, page string) {
	if err := h.pages.render(w, status, page, data); err != nil {
		errutil.LogErrorContext(r.Context(), h.logger, "page render failed", err)
		http.Error(w, locale.Text(locale.Sorry, data.Locale), http.StatusInternalServerError)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	errutil.LogErrorContext(r.Context(), h.logger, "request failed", err, "operation", operation)
	http.Error(w, locale.Text(locale.Sorry, RequestLocale(r.Context())), http.StatusInternalServerError)
}

func (h *Handler) recordLogin(result string) {
	if h.metrics != nil {
		h.metrics.RecordLogin(result)
	}
}

func (h *Handler) recordRegistration(result string) {
	if h.metrics != nil {
		h.metrics.RecordRegistration(result)
	}
}

// authResult maps an orchestrator error to a metrics outcome label.
func authResult(err error) string {
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		return observability.ResultInvalid
	case errors.Is(err, auth.ErrNotRegistered),
		errors.Is(err, auth.ErrWrongCredentials),
		errors.Is(err, auth.ErrUsernameTaken):
		return observability.ResultFailure
	default:
		return observability.ResultError
	}
}
