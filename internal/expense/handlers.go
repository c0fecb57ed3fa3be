package expense

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// Max upload size; high-resolution phone photos run large
const maxUploadSize = int64(50 << 20) // 50MB

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeResponse writes an invocation response envelope: the envelope's
// headers and status code, then its body as JSON
func writeResponse(w http.ResponseWriter, resp Response) {
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(resp.StatusCode)
	if err := json.NewEncoder(w).Encode(resp.Body); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleStatus reports service liveness
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "receipted",
		"status":  "ok",
	})
}

// handleProcessEvent runs the pipeline for one storage notification
func (s *Server) handleProcessEvent(w http.ResponseWriter, r *http.Request) {
	var event StorageEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		slog.Error("Error decoding storage event", "error", err)
		writeResponse(w, s.service.invalidEventResponse("invalid storage event structure"))
		return
	}

	writeResponse(w, s.service.HandleEvent(r.Context(), &event))
}

// handleUploadReceipt stores an uploaded receipt and runs the pipeline on it
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		setCORSHeaders(w)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		errorMsg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			errorMsg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		json.NewEncoder(w).Encode(map[string]string{
			"error": errorMsg,
		})
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		setCORSHeaders(w)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		errorMsg := "No file provided"
		if err.Error() == "http: no such file" {
			errorMsg = "No file was selected. Please choose a file to upload."
		}
		json.NewEncoder(w).Encode(map[string]string{
			"error": errorMsg,
		})
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		setCORSHeaders(w)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "File is too large. Maximum size is 50MB. Please compress or resize your image.",
		})
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		setCORSHeaders(w)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "Error reading file. Please try again.",
		})
		return
	}

	writeResponse(w, s.service.ProcessUpload(r.Context(), s.uploadBucket, header.Filename, data))
}

// handlePresignUpload returns a presigned upload URL for a filename
func (s *Server) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		corsError(w, "filename query parameter required", http.StatusBadRequest)
		return
	}

	url, key, err := s.service.PresignUpload(s.uploadBucket, filename)
	if err != nil {
		slog.Error("Error presigning upload", "filename", filename, "error", err)
		corsError(w, "Error presigning upload", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"url":    url,
		"bucket": s.uploadBucket,
		"key":    key,
	}); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleDeleteObject removes a stored receipt object
func (s *Server) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		corsError(w, "Object key required", http.StatusBadRequest)
		return
	}
	if err := s.service.DeleteObject(s.uploadBucket, key); err != nil {
		corsError(w, "Error deleting object", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
