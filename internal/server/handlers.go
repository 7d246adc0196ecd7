package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"pantry/internal/storage"
	"pantry/internal/todo"
)

const (
	maxJSONRequestBodyBytes = 1 << 20
	maxMultipartMemory      = 32 << 20

	defaultTodoSkip  = 0
	defaultTodoLimit = 100
)

func (s *Server) newHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)

	mux.HandleFunc("GET /todos", s.handleListTodos)
	mux.HandleFunc("POST /todos", s.handleCreateTodo)
	mux.HandleFunc("DELETE /todos/{id}", s.handleDeleteTodo)

	mux.HandleFunc("POST /objects", s.handleUploadObject)
	mux.HandleFunc("GET /objects", s.handleListObjects)
	mux.HandleFunc("GET /objects/{name...}", s.handleDownloadObject)
	mux.HandleFunc("DELETE /objects/{name...}", s.handleDeleteObject)
	mux.HandleFunc("GET /bucket-type", s.handleBucketType)

	var h http.Handler = mux
	h = withRootPath(s.cfg.RootPath, h)
	h = withCORS(s.cfg.CORSOrigins, h)
	return requestLog(s.logger, h)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, rootGreeting)
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", defaultTodoSkip)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", defaultTodoLimit)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	total, todos, err := s.todos.List(r.Context(), skip, limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, todosResponse{Total: total, Todos: todos})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeJSONRequest(w, r, &req); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("decode request: %v", err))
		return
	}
	if req.Label == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "label is required")
		return
	}
	if req.Quantity == nil {
		s.writeError(w, http.StatusUnprocessableEntity, "quantity is required")
		return
	}

	created, err := s.todos.Create(r.Context(), *req.Label, *req.Quantity)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "todo id must be an integer")
		return
	}

	deleted, err := s.todos.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Todo not found")
			return
		}
		s.internalError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, deleted)
}

func (s *Server) handleUploadObject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("parse upload: %v", err))
		return
	}
	// The server only cleans up the form of the request it dispatched, not
	// of clones made by withRootPath.
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer file.Close()

	name := uploadName(header)
	path, err := s.uploadObject(r, name, file)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to upload file to S3: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("File '%s' uploaded successfully to S3 bucket (%s).", name, path),
	})
}

// uploadName returns the filename exactly as the client sent it.
// FileHeader.Filename is reduced to its base name, which would flatten
// nested keys such as "reports/2024/q1.csv".
func uploadName(header *multipart.FileHeader) string {
	_, params, err := mime.ParseMediaType(header.Header.Get("Content-Disposition"))
	if err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return header.Filename
}

func (s *Server) uploadObject(r *http.Request, name string, file io.Reader) (string, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return s.objects.PutObject(r.Context(), name, content)
}

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	objects, err := s.objects.ListObjects(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Error listing files: "+err.Error())
		return
	}
	if objects == nil {
		objects = []storage.Object{}
	}
	s.writeJSON(w, http.StatusOK, listFilesResponse{Files: objects})
}

func (s *Server) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	path, err := s.objects.DeleteObject(r.Context(), name)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Error deleting files: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("File '%s' deleted successfully from S3 bucket (%s).", name, path),
	})
}

func (s *Server) handleDownloadObject(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	content, err := s.objects.GetObject(r.Context(), name)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Error downloading file: "+err.Error())
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		s.logger.Warn("write download body", "name", name, "err", err)
	}
}

func (s *Server) handleBucketType(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, bucketTypeResponse{BucketType: string(s.objects.BucketType())})
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return parsed, nil
}

func decodeJSONRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// internalError answers a record store fault. Only NotFound is translated;
// everything else is logged and surfaced as a bare 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}
