package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"github.com/2beens/mongoextract/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:embed pages/*.html static/*
var content embed.FS

const robotsTxt = "User-agent: *\nDisallow: /\n"

type Handler struct {
	pages  fs.FS
	static http.Handler
}

func NewHandler() *Handler {
	static, err := fs.Sub(content, "static")
	if err != nil {
		// embedded layout is fixed at build time
		panic(err)
	}
	return &Handler{
		pages:  content,
		static: http.StripPrefix("/static/", http.FileServer(http.FS(static))),
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleRoot).Methods("GET").Name("root")
	r.HandleFunc("/login", h.page("login.html")).Methods("GET").Name("login-page")
	r.HandleFunc("/admin", h.page("admin.html")).Methods("GET").Name("admin-page")
	r.PathPrefix("/admin/").HandlerFunc(h.page("admin.html")).Methods("GET").Name("admin-subpage")
	r.PathPrefix("/static/").Handler(h.static).Methods("GET").Name("static")
	r.HandleFunc("/robots.txt", h.handleRobots).Methods("GET").Name("robots")
	r.HandleFunc("/favicon.ico", h.handleFavicon).Methods("GET").Name("favicon")
}

// NotFound answers API paths with JSON and everything else with plain text.
func NotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		pkg.WriteJSONError(w, http.StatusNotFound, "Not found")
		return
	}
	http.NotFound(w, r)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin", http.StatusTemporaryRedirect)
}

func (h *Handler) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := fs.ReadFile(h.pages, "pages/"+name)
		if err != nil {
			log.Errorf("read page %s: %s", name, err)
			http.Error(w, "page not available", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		pkg.WriteResponseBytes(w, pkg.ContentType.HTML, body, http.StatusOK)
	}
}

func (h *Handler) handleRobots(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, robotsTxt)
}

func (h *Handler) handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
