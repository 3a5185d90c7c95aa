package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/snonux/accentcoach/internal/annotation"
	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/feedback"
	"codeberg.org/snonux/accentcoach/internal/scoring"
)

// formOverhead is the room left for the non-file fields of the form
const formOverhead = 1 << 20

type evaluateResponse struct {
	Report       feedback.Report `json:"report"`
	NormalLine   string          `json:"normal_line"`
	StressedLine string          `json:"stressed_line"`
	Rendered     string          `json:"rendered,omitempty"`
	Tips         string          `json:"tips,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
	Result       json.RawMessage `json:"result"`
}

// options are the per-request knobs shared by evaluate and classify
type options struct {
	thresholds feedback.Thresholds
	format     string
	tips       bool
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes+formOverhead)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	reference := strings.TrimSpace(r.FormValue("text"))
	if reference == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := audio.ValidateUpload(header.Filename, contentType, header.Size, s.config.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = audio.ContentTypeFor(header.Filename)
	}

	opts, err := s.parseOptions(r.FormValue("profile"), r.FormValue("format"), r.FormValue("tips"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	res, err := s.scorer.Score(ctx, scoring.Request{
		Text:        annotation.Strip(reference),
		Audio:       file,
		FileName:    header.Filename,
		ContentType: contentType,
	})

	var perr *scoring.ProviderError
	switch {
	case err == nil:
	case errors.As(err, &perr):
		// the service answered with an error document; hand it back untouched
		s.logger.WarnContext(ctx, "scoring rejected request",
			slog.String("short_message", perr.Short),
			slog.String("detail_message", perr.Detail),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write(res.Document())
		return
	case errors.Is(err, scoring.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	default:
		s.logger.ErrorContext(ctx, "scoring failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "scoring service failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.respond(r, reference, res, opts))
}

type classifyRequest struct {
	Text    string          `json:"text"`
	Profile string          `json:"profile"`
	Format  string          `json:"format"`
	Tips    bool            `json:"tips"`
	Result  *scoring.Result `json:"result"`
}

// handleClassify classifies a result document the client already holds,
// e.g. one saved from an earlier evaluation.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	reference := strings.TrimSpace(req.Text)
	if reference == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Result == nil {
		writeError(w, http.StatusBadRequest, "result is required")
		return
	}
	if err := req.Result.Err(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	opts, err := s.parseOptions(req.Profile, req.Format, strconv.FormatBool(req.Tips))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.respond(r, reference, req.Result, opts))
}

func (s *Server) parseOptions(profile, format, tips string) (options, error) {
	th, err := s.profiles.Resolve(strings.TrimSpace(profile))
	if err != nil {
		return options{}, err
	}

	format = strings.TrimSpace(format)
	if format != "" {
		if err := feedback.ValidateFormat(format); err != nil {
			return options{}, err
		}
	}

	var wantTips bool
	if tips != "" {
		wantTips, err = strconv.ParseBool(tips)
		if err != nil {
			return options{}, fmt.Errorf("invalid tips flag %q", tips)
		}
	}
	return options{thresholds: th, format: format, tips: wantTips}, nil
}

// respond classifies res against reference and assembles the response.
// Each call parses the reference afresh.
func (s *Server) respond(r *http.Request, reference string, res *scoring.Result, opts options) evaluateResponse {
	set := annotation.Parse(reference)
	report := feedback.ClassifyResult(res, set, opts.thresholds)
	normal, stressed := feedback.Render(report)

	resp := evaluateResponse{
		Report:       report,
		NormalLine:   normal,
		StressedLine: stressed,
		Result:       res.Document(),
	}

	for _, word := range annotation.Conflicts(reference) {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("%q appears both with and without a stress indicator; it is treated as stressed", word))
	}

	if opts.format != "" {
		renderer, _ := feedback.NewRenderer(opts.format, res.Words(), set, opts.thresholds)
		resp.Rendered = renderer.Render(report)
	}

	if opts.tips && s.coach != nil {
		tips, err := s.coach.Tips(r.Context(), report, reference)
		if err != nil {
			s.logger.WarnContext(r.Context(), "coach failed", slog.String("coach", s.coach.Name()), slog.String("error", err.Error()))
			resp.Warnings = append(resp.Warnings, "pronunciation tips are unavailable")
		} else {
			resp.Tips = tips
		}
	}

	return resp
}
