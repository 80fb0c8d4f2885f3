// Package main implements a mock Facebook Marketplace for local development.
// It renders search result and listing pages from a JSON fixture in the
// layout the facebook scraper parses, plus a sign-in form that accepts any
// credentials, so the monitor can run end to end without a Facebook account:
//
//	go run ./tools/mock-server
//	MM_FACEBOOK_URL=http://localhost:8089 marketplace-monitor monitor --config config.yaml
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/marketplace-monitor/internal/marketplace/facebook"
)

type listing struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
	Image       string  `json:"image"`
	Seller      string  `json:"seller"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
}

// PriceText renders the price the way cards show it.
func (l listing) PriceText() string {
	if l.Price == 0 {
		return "Free"
	}
	return "$" + strconv.FormatFloat(l.Price, 'f', -1, 64)
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/listings.json", "path to the listings fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	listings, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "listings", len(listings))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock marketplace", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, listings)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, listings []listing) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /marketplace/{city}/search", searchHandler(logger, listings))
	mux.HandleFunc("GET /marketplace/item/{id}/", itemHandler(logger, listings))
	mux.HandleFunc("GET "+loginPath, loginFormHandler(logger))
	mux.HandleFunc("POST "+loginPath, loginHandler(logger))
	return mux
}

func loadFixture(path string) ([]listing, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var out []listing
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return out, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

var searchPage = template.Must(template.New("search").Parse(`<html>
<body>
<div role="main">
  <div aria-label="Collection of Marketplace items" role="main">
    <div>
{{- range .Listings}}
      <div>
        <a href="{{$.Origin}}/marketplace/item/{{.ID}}/?ref=search" role="link">
          <div>
            <div><img src="{{.Image}}" alt=""></div>
            <div>
              <div><span>{{.PriceText}}</span></div>
              <div><span>{{.Title}}</span></div>
              <div><span>{{.Location}}</span></div>
            </div>
          </div>
        </a>
      </div>
{{- end}}
    </div>
  </div>
</div>
</body>
</html>
`))

var itemPage = template.Must(template.New("item").Parse(`<html>
<body>
<div>
  <img src="{{.Image}}">
  <div>
    <h1><span>Marketplace</span></h1>
    <h1><span>{{.Title}}</span></h1>
    <div><span>{{.PriceText}}</span></div>
  </div>
  <div>
    <h2><span>Details</span></h2>
    <ul>
      <li>
        <div><span>Condition</span></div>
        <div><span>{{.Condition}}</span></div>
      </li>
    </ul>
    <div><span>{{.Description}}</span></div>
  </div>
  <div>
    <div><span>{{.Location}}</span></div>
    <div><span>Location is approximate</span></div>
  </div>
  <div>
    <h2><span>Seller information</span></h2>
    <a href="/marketplace/profile/{{.ID}}/"><span>{{.Seller}}</span></a>
  </div>
</div>
</body>
</html>
`))

func searchHandler(logger *slog.Logger, listings []listing) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		words := strings.Fields(strings.ToLower(q.Get("query")))
		minPrice := parsePrice(q.Get("minPrice"))
		maxPrice := parsePrice(q.Get("maxPrice"))

		var matched []listing
		for _, l := range listings {
			if !containsAll(strings.ToLower(l.Title), words) {
				continue
			}
			if minPrice > 0 && l.Price < minPrice {
				continue
			}
			if maxPrice > 0 && l.Price > maxPrice {
				continue
			}
			matched = append(matched, l)
		}

		data := struct {
			Origin   string
			Listings []listing
		}{Origin: "http://" + r.Host, Listings: matched}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := searchPage.Execute(w, data); err != nil {
			logger.Error("rendering search page", "error", err)
			return
		}
		logger.Info("search", "city", r.PathValue("city"), "query", q.Get("query"), "matched", len(matched))
	}
}

func itemHandler(logger *slog.Logger, listings []listing) http.HandlerFunc {
	byID := make(map[string]listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}

	return func(w http.ResponseWriter, r *http.Request) {
		l, ok := byID[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := itemPage.Execute(w, l); err != nil {
			logger.Error("rendering item page", "error", err)
		}
	}
}

const sessionCookie = "c_user"

const loginPath = facebook.LoginPath

var loginPage = template.Must(template.New("login").Parse(`<html>
<body>
<form method="post" action="` + loginPath + `">
{{- if .}}
  <div role="alert">{{.}}</div>
{{- end}}
  <input type="text" name="email" placeholder="Email or phone number">
  <input type="password" name="pass" placeholder="Password">
  <button type="submit" name="login">Log in</button>
</form>
</body>
</html>
`))

func loginFormHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := loginPage.Execute(w, ""); err != nil {
			logger.Error("rendering login page", "error", err)
		}
	}
}

// loginHandler accepts any non-empty email and password and starts a
// session the way Facebook does, with a c_user cookie.
func loginHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		email, pass := r.PostForm.Get("email"), r.PostForm.Get("pass")
		if email == "" || pass == "" {
			logger.Info("login rejected", "email", email)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			if err := loginPage.Execute(w, "The password you entered is incorrect."); err != nil {
				logger.Error("rendering login page", "error", err)
			}
			return
		}

		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: email, Path: "/", HttpOnly: true})
		logger.Info("login", "email", email)
		http.Redirect(w, r, "/marketplace/", http.StatusSeeOther)
	}
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
