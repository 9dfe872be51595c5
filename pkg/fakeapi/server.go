/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fakeapi is an in-memory twin of the blog service. It answers the
// same routes with the same quirks, and lets tests inject server failures.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// updateMissingPostError is the text the real service answers when a PUT
// targets a post that does not exist.
const updateMissingPostError = "TypeError: Cannot read properties of undefined (reading 'id')"

// Server is the blog service twin.
type Server struct {
	Faults   *FaultRegistry
	Requests *RequestLog

	router *chi.Mux
	store  *Store
	logger *zap.Logger
}

// New creates a twin serving the standard data set.
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		Faults:   NewFaultRegistry(),
		Requests: NewRequestLog(1000),
		router:   chi.NewRouter(),
		store:    NewStore(),
		logger:   logger,
	}

	s.router.Use(chimw.RequestID)
	s.router.Use(s.requestLog)
	s.router.Use(s.faultInjection)

	s.router.Get("/users", s.listUsers)
	s.router.Get("/users/{id}", s.getUser)
	s.router.Get("/users/{id}/posts", s.listUserPosts)
	s.router.Get("/posts", s.listPosts)
	s.router.Post("/posts", s.createPost)
	s.router.Get("/posts/{id}", s.getPost)
	s.router.Put("/posts/{id}", s.updatePost)
	s.router.Patch("/posts/{id}", s.patchPost)
	s.router.Delete("/posts/{id}", s.deletePost)

	// The real service answers an empty object for anything it does not know.
	s.router.NotFound(s.notFound)
	s.router.MethodNotAllowed(s.notFound)

	return s
}

// ServeHTTP implements http.Handler so the twin can back an httptest.Server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Store exposes the seed data so tests can derive expectations.
func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.Requests.Add(RequestLogEntry{
			Timestamp:     start,
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			StatusCode:    ww.Status(),
		})

		s.logger.Debug("twin request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", chimw.GetReqID(r.Context())))
	})
}

func (s *Server) faultInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fault, ok := s.Faults.take(r.Method, r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(fault.StatusCode)
		_, _ = w.Write([]byte(fault.Body))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func emptyObject(w http.ResponseWriter, status int) {
	writeJSON(w, status, map[string]any{})
}

func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	emptyObject(w, http.StatusNotFound)
}

// pathID parses the {id} URL parameter, ok is false for non-integers.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}

	return id, true
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Users())
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		emptyObject(w, http.StatusNotFound)
		return
	}

	user, ok := s.store.User(id)
	if !ok {
		emptyObject(w, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) listUserPosts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusOK, []Post{})
		return
	}

	writeJSON(w, http.StatusOK, s.store.PostsByUser(id))
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	if userID := r.URL.Query().Get("userId"); userID != "" {
		id, err := strconv.Atoi(userID)
		if err != nil {
			writeJSON(w, http.StatusOK, []Post{})
			return
		}

		writeJSON(w, http.StatusOK, s.store.PostsByUser(id))

		return
	}

	writeJSON(w, http.StatusOK, s.store.Posts())
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		emptyObject(w, http.StatusNotFound)
		return
	}

	post, ok := s.store.Post(id)
	if !ok {
		emptyObject(w, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// decodeObject reads a JSON object body, an absent or invalid body is
// treated as empty like the real service does.
func decodeObject(r *http.Request) map[string]any {
	fields := map[string]any{}

	if r.Body == nil {
		return fields
	}

	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return map[string]any{}
	}

	return fields
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	fields := decodeObject(r)
	fields["id"] = NextPostID

	writeJSON(w, http.StatusCreated, fields)
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if ok {
		_, ok = s.store.Post(id)
	}

	if !ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(updateMissingPostError))

		return
	}

	fields := decodeObject(r)
	fields["id"] = id

	writeJSON(w, http.StatusOK, fields)
}

func (s *Server) patchPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		emptyObject(w, http.StatusNotFound)
		return
	}

	post, ok := s.store.Post(id)
	if !ok {
		emptyObject(w, http.StatusNotFound)
		return
	}

	merged := map[string]any{
		"userId": post.UserID,
		"id":     post.ID,
		"title":  post.Title,
		"body":   post.Body,
	}

	for k, v := range decodeObject(r) {
		if k != "id" {
			merged[k] = v
		}
	}

	writeJSON(w, http.StatusOK, merged)
}

func (s *Server) deletePost(w http.ResponseWriter, _ *http.Request) {
	emptyObject(w, http.StatusOK)
}
