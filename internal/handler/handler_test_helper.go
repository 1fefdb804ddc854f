// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-panel/internal/backend"
	"github.com/olegiv/ocms-panel/internal/editor"
	"github.com/olegiv/ocms-panel/internal/gallery"
	"github.com/olegiv/ocms-panel/internal/i18n"
	"github.com/olegiv/ocms-panel/internal/imaging"
	"github.com/olegiv/ocms-panel/internal/layout"
	"github.com/olegiv/ocms-panel/internal/middleware"
	"github.com/olegiv/ocms-panel/internal/preview"
	"github.com/olegiv/ocms-panel/internal/registry"
	"github.com/olegiv/ocms-panel/internal/render"
	"github.com/olegiv/ocms-panel/internal/service"
	"github.com/olegiv/ocms-panel/internal/session"
	"github.com/olegiv/ocms-panel/internal/testutil"
	"github.com/olegiv/ocms-panel/web"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "correct horse"
	testToken    = "opaque-token"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var testLanguages = []backend.Language{
	{ID: 1, Name: "English", Code: "en", Active: true},
	{ID: 2, Name: "Русский", Code: "ru", Active: true},
}

type contentKey struct {
	section int
	lang    int64
}

type updateCall struct {
	section int
	lang    int64
	content map[string]any
}

// fakeBackend stands in for the content backend. Setting unauthorized makes
// every authenticated call fail with a 401.
type fakeBackend struct {
	mu sync.Mutex

	unauthorized bool
	langErr      error
	fetchErr     error
	saveErr      error

	content   map[contentKey]map[string]any
	updates   []updateCall
	folders   map[string][]backend.GalleryImage
	deleted   []string
	deletedID []int64
	uploads   []backend.Upload
	constants map[string]string
	setCalls  int

	// block holds FetchContent for a language until closed; started
	// receives the language of every fetch that begins.
	block   map[int64]chan struct{}
	started chan int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		content: make(map[contentKey]map[string]any),
		folders: map[string][]backend.GalleryImage{
			"team": {{ID: 7, Filename: "anna.jpg", URL: "/uploads/team/anna.jpg", Alt: "Anna"}},
		},
		constants: map[string]string{
			backend.ConstantCVEmail:       "cv@example.com",
			backend.ConstantUserDataEmail: "privacy@example.com",
		},
	}
}

func (f *fakeBackend) check() error {
	if f.unauthorized {
		return &backend.APIError{Status: http.StatusUnauthorized}
	}
	return nil
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (*backend.LoginResult, error) {
	if email != testEmail || password != testPassword {
		return nil, backend.ErrInvalidCredentials
	}
	return &backend.LoginResult{Token: testToken, User: backend.User{ID: 1, Username: "admin", Email: email}}, nil
}

func (f *fakeBackend) All(context.Context, string) ([]backend.Language, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.langErr != nil {
		return nil, f.langErr
	}
	return testLanguages, nil
}

func (f *fakeBackend) FetchContent(_ context.Context, _ string, sectionID int, langID int64) (map[string]any, error) {
	f.mu.Lock()
	block, started := f.block[langID], f.started
	f.mu.Unlock()
	if started != nil {
		started <- langID
	}
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.content[contentKey{sectionID, langID}], nil
}

func (f *fakeBackend) UpdateSectionContent(_ context.Context, _ string, sectionID int, langID int64, content map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	f.updates = append(f.updates, updateCall{sectionID, langID, content})
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.content[contentKey{sectionID, langID}] = content
	return content, nil
}

func (f *fakeBackend) ListGalleries(context.Context, string) ([]backend.GalleryFolder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	var out []backend.GalleryFolder
	for name, images := range f.folders {
		out = append(out, backend.GalleryFolder{Name: name, Images: images})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeBackend) FolderImages(_ context.Context, _, folder string) ([]backend.GalleryImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	return f.folders[folder], nil
}

func (f *fakeBackend) CreateFolder(_ context.Context, _, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return "", err
	}
	f.folders[name] = nil
	return name, nil
}

func (f *fakeBackend) DeleteFolder(_ context.Context, _, folder string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.deleted = append(f.deleted, folder)
	delete(f.folders, folder)
	return nil
}

func (f *fakeBackend) UploadImage(_ context.Context, _, folder string, up backend.Upload) (*backend.GalleryImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, up)
	img := backend.GalleryImage{ID: int64(100 + len(f.uploads)), Filename: up.Filename, Alt: up.Alt}
	f.folders[folder] = append(f.folders[folder], img)
	return &img, nil
}

func (f *fakeBackend) DeleteImage(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.deletedID = append(f.deletedID, id)
	return nil
}

func (f *fakeBackend) UpdateImageAlt(_ context.Context, _ string, id int64, alt string) (*backend.GalleryImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	return &backend.GalleryImage{ID: id, Alt: alt}, nil
}

func (f *fakeBackend) GetConstant(_ context.Context, _, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return "", err
	}
	return f.constants[key], nil
}

func (f *fakeBackend) SetConstant(_ context.Context, _, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.setCalls++
	f.constants[key] = value
	return nil
}

func (f *fakeBackend) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// fakeActivity records activity in memory.
type fakeActivity struct {
	mu      sync.Mutex
	entries []service.Activity
}

func (a *fakeActivity) Record(_ context.Context, entry service.Activity) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *fakeActivity) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// manualClock fires layout timers only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	at   time.Duration
	f    func()
	done bool
}

func (t *manualTimer) Stop() bool {
	active := !t.done
	t.done = true
	return active
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) layout.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.done && t.at <= c.now {
			t.done = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// testEnv is a panel wired to fakes, routed the way the server routes it.
type testEnv struct {
	t        *testing.T
	backend  *fakeBackend
	activity *fakeActivity
	clock    *manualClock
	sm       *scs.SessionManager
	views    *ViewState
	router   http.Handler
	cookies  map[string]*http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fb := newFakeBackend()
	act := &fakeActivity{}
	clock := &manualClock{}
	logger := testutil.TestLoggerSilent()

	sm := scs.New()
	templatesFS, err := web.TemplatesFS()
	if err != nil {
		t.Fatalf("TemplatesFS: %v", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sm})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	views := &ViewState{
		Registries: registry.NewStore(),
		Layouts:    layout.NewManager(clock),
		Preview:    preview.NewHub(),
		Editor:     editor.New(fb, act, logger),
	}
	deps := Deps{Renderer: renderer, Sessions: sm, Views: views, Logger: logger}

	lp := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	t.Cleanup(lp.Close)
	authH := NewAuthHandler(deps, fb, lp)
	pagesH := NewPagesHandler(deps, fb, "https://site.example")
	layoutH := NewLayoutHandler(deps)
	previewH := NewPreviewHandler(deps, "https://site.example")
	galleryH := NewGalleryHandler(deps, gallery.NewService(fb, imaging.NewProcessor(1<<20, 1024), act, logger), 1<<20)
	settingsH := NewSettingsHandler(deps, fb, act)
	dashboardH := NewDashboardHandler(deps, service.NewActivityService(testutil.TestDB(t)))

	root := chi.NewRouter()
	root.With(middleware.LoadSession(sm), middleware.Auth(sm)).Get(RoutePreviewSocket, previewH.Socket)

	r := root.With(sm.LoadAndSave)
	r = r.With(middleware.UILanguage(sm))
	r.Get(RouteLogin, authH.LoginForm)
	r.Post(RouteLogin, authH.Login)
	r.Post("/logout", authH.Logout)
	r.Route(RouteDashboard, func(r chi.Router) {
		r.Use(middleware.Auth(sm))
		r.Get("/", dashboardH.Dashboard)
		r.Get("/pages/{page}", pagesH.Page)
		r.Get("/sections/{id}", pagesH.Section)
		r.Post("/sections/{id}", pagesH.SaveSection)
		r.Post("/preview/refresh", previewH.Refresh)
		r.Get("/layout", layoutH.State)
		r.Post("/layout/fullscreen", layoutH.Fullscreen)
		r.Post("/layout/exit", layoutH.Exit)
		r.Post("/layout/key", layoutH.Key)
		r.Get("/gallery", galleryH.List)
		r.Post("/gallery/folders", galleryH.CreateFolder)
		r.Get("/gallery/folders/{folder}/delete", galleryH.ConfirmDeleteFolder)
		r.Post("/gallery/folders/{folder}/delete", galleryH.DeleteFolder)
		r.Post("/gallery/folders/{folder}/images", galleryH.Upload)
		r.Get("/gallery/folders/{folder}/images/{id}/delete", galleryH.ConfirmDeleteImage)
		r.Post("/gallery/folders/{folder}/images/{id}/delete", galleryH.DeleteImage)
		r.Post("/gallery/folders/{folder}/images/{id}/alt", galleryH.UpdateAlt)
		r.Get("/settings", settingsH.Form)
		r.Post("/settings", settingsH.Save)
	})

	return &testEnv{
		t:        t,
		backend:  fb,
		activity: act,
		clock:    clock,
		sm:       sm,
		views:    views,
		router:   root,
		cookies:  make(map[string]*http.Cookie),
	}
}

// withCookies adds the session cookie to req.
func (e *testEnv) withCookies(req *http.Request) *http.Request {
	for _, c := range e.cookies {
		req.AddCookie(c)
	}
	return req
}

// do sends req with the session cookie and keeps any cookie the response sets.
func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	e.t.Helper()
	e.withCookies(req)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		e.cookies[c.Name] = c
	}
	return w
}

func (e *testEnv) get(path string, htmx bool) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return e.do(req)
}

func (e *testEnv) post(path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return e.do(req)
}

func (e *testEnv) postBody(path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return e.do(req)
}

// signIn logs in through the login form.
func (e *testEnv) signIn() {
	e.t.Helper()
	w := e.post(RouteLogin, url.Values{"email": {testEmail}, "password": {testPassword}}, false)
	assertStatus(e.t, w.Code, http.StatusSeeOther)
	if loc := w.Header().Get("Location"); loc != RouteDashboard {
		e.t.Fatalf("login redirect = %q, want %q", loc, RouteDashboard)
	}
}

// flash follows a redirect and returns the flash shown on the target page.
func (e *testEnv) flash(w *httptest.ResponseRecorder) string {
	e.t.Helper()
	loc := w.Header().Get("Location")
	if loc == "" {
		e.t.Fatalf("no redirect, status %d", w.Code)
	}
	page := e.get(loc, false)
	return strings.TrimSpace(e.doc(page).Find(".flash").First().Text())
}

func (e *testEnv) doc(w *httptest.ResponseRecorder) *goquery.Document {
	e.t.Helper()
	return testutil.ParseHTML(e.t, w.Body.Bytes())
}

// viewKey returns the view id of the signed-in session.
func (e *testEnv) viewKey() string {
	e.t.Helper()
	c, ok := e.cookies[e.sm.Cookie.Name]
	if !ok {
		e.t.Fatal("no session cookie")
	}
	ctx, err := e.sm.Load(context.Background(), c.Value)
	if err != nil {
		e.t.Fatalf("load session: %v", err)
	}
	return e.sm.GetString(ctx, session.KeyViewID)
}

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}
