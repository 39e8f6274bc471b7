package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type componentUpdate struct {
	Component struct {
		Status string `json:"status"`
	} `json:"component"`
}

type component struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// store keeps the latest status per page/component pair.
type store struct {
	mu         sync.Mutex
	components map[string]component
	healthCode int
}

func main() {
	st := &store{components: make(map[string]component), healthCode: http.StatusOK}
	mux := http.NewServeMux()

	// Probe target: GET /health answers with the current code; POST /health?code=500 changes it.
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		st.mu.Lock()
		defer st.mu.Unlock()
		if r.Method == http.MethodPost {
			code, err := strconv.Atoi(r.URL.Query().Get("code"))
			if err != nil || code < 100 || code > 599 {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			st.healthCode = code
		}
		w.WriteHeader(st.healthCode)
		_, _ = w.Write([]byte(http.StatusText(st.healthCode)))
	})

	mux.HandleFunc("PUT /v1/pages/{page}/components/{component}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var update componentUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil || update.Component.Status == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		c := component{
			ID:        r.PathValue("component"),
			PageID:    r.PathValue("page"),
			Status:    update.Component.Status,
			UpdatedAt: time.Now().UTC(),
		}
		st.mu.Lock()
		st.components[c.PageID+"/"+c.ID] = c
		st.mu.Unlock()
		writeJSON(w, c)
	})

	mux.HandleFunc("GET /v1/components", func(w http.ResponseWriter, r *http.Request) {
		st.mu.Lock()
		defer st.mu.Unlock()
		out := make([]component, 0, len(st.components))
		for _, c := range st.components {
			out = append(out, c)
		}
		writeJSON(w, out)
	})

	logger := log.New(log.Writer(), "statuspage-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":8080",
		Handler: logRequests(logger, mux),
	}

	logger.Println("listening on :8080")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
