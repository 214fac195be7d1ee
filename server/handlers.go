package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/attestedmedia/mediaverifier/risk"
	"github.com/attestedmedia/mediaverifier/verify"
)

type errorResponse struct {
	OK       bool   `json:"ok"`
	Category string `json:"category,omitempty"`
	Detail   string `json:"detail"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	// Bound the whole body before touching it; certificate chain and payload
	// have their own tighter limits inside the pipeline.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxMediaBytes+formMemoryLimit)

	if err := r.ParseMultipartForm(formMemoryLimit); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: fmt.Sprintf("invalid multipart form: %v", err)})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	payloadCanonical := r.FormValue("payload_canonical")
	if payloadCanonical == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "missing payload_canonical"})
		return
	}

	sigB64 := r.FormValue("sig_b64")
	if sigB64 == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "missing sig_b64"})
		return
	}

	// The chain arrives as a JSON array string inside the form field.
	var x5c []string
	if err := json.Unmarshal([]byte(r.FormValue("x5c_der_b64")), &x5c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: fmt.Sprintf("invalid x5c_der_b64: %v", err)})
		return
	}

	mediaFile, _, err := r.FormFile("media")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "media file required"})
		return
	}
	defer mediaFile.Close()

	media, err := io.ReadAll(io.LimitReader(mediaFile, s.maxMediaBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: fmt.Sprintf("failed to read media: %v", err)})
		return
	}
	if int64(len(media)) > s.maxMediaBytes {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: fmt.Sprintf("media exceeds %d bytes", s.maxMediaBytes)})
		return
	}

	verdict := s.svc.Verify(&verify.Request{
		PayloadCanonical: []byte(payloadCanonical),
		SignatureB64:     sigB64,
		CertChainB64:     x5c,
		Media:            media,
	})

	if !verdict.OK {
		status := http.StatusBadRequest
		if verdict.Category.PolicyFailure() {
			status = http.StatusForbidden
		}
		s.log.WithField("category", string(verdict.Category)).Info("verification rejected")
		writeJSON(w, status, errorResponse{Category: string(verdict.Category), Detail: verdict.Message})
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

func (s *Server) handleJudge(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, formMemoryLimit)

	var log risk.EditLog
	if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: fmt.Sprintf("invalid edit log: %v", err)})
		return
	}

	writeJSON(w, http.StatusOK, risk.Judge(log))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
