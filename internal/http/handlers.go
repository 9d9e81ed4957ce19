package http

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"finpal/internal/core"
	"finpal/internal/log"
	"finpal/internal/services"
	"finpal/internal/session"
)

const multipartMemory = 1 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	flash := popFlash(w, r)
	id := sessionID(r)
	if id != "" {
		if _, err := s.dash.Session(id); err != nil {
			clearSessionCookie(w)
		}
	}
	s.render(w, r, http.StatusOK, s.page(r, flash))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.render(w, r, http.StatusRequestEntityTooLarge, newPageData(
				&Flash{Kind: "error", Message: fmt.Sprintf("The file is larger than %d bytes.", s.maxUpload)},
				s.dash.Categories()))
			return
		}
		s.render(w, r, http.StatusBadRequest, newPageData(
			&Flash{Kind: "error", Message: "The upload could not be read."}, s.dash.Categories()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.render(w, r, http.StatusBadRequest, newPageData(
			&Flash{Kind: "error", Message: "Choose a CSV file to upload."}, s.dash.Categories()))
		return
	}
	defer file.Close()

	name := sanitizeInput(filepath.Base(header.Filename))
	sess, err := s.dash.Upload(ctx, name, file)
	if err != nil {
		var pe *core.ParseError
		if errors.As(err, &pe) {
			// No partial data: the page is shown without any session.
			s.render(w, r, http.StatusUnprocessableEntity, newPageData(
				&Flash{Kind: "error", Message: "Could not load " + name + ": " + pe.Error()}, s.dash.Categories()))
			return
		}
		logger.ErrorContext(ctx, "Upload failed", log.FieldOperation, log.OpUpload, log.FieldError, err)
		s.render(w, r, http.StatusInternalServerError, newPageData(
			&Flash{Kind: "error", Message: "Something went wrong loading the file."}, s.dash.Categories()))
		return
	}

	s.dash.EndSession(sessionID(r))
	setSessionCookie(w, r, sess.ID)

	rep := sess.Report()
	msg := fmt.Sprintf("Loaded %d transactions from %s, %d categorized automatically.", rep.Kept, name, sess.Matched())
	if rep.Dropped() > 0 {
		msg += fmt.Sprintf(" Skipped %d rows with an unreadable date or Debit/Credit value.", rep.Dropped())
	}
	redirectHome(w, r, "success", msg)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, s.page(r, &Flash{Kind: "error", Message: "Invalid request."}))
		return
	}

	name := sanitizeInput(r.PostForm.Get("name"))
	added, err := s.dash.AddCategory(ctx, name)
	switch {
	case errors.Is(err, core.ErrEmptyCategoryName):
		s.render(w, r, http.StatusUnprocessableEntity, s.page(r, &Flash{Kind: "error", Message: "Category name cannot be empty."}))
	case err != nil:
		log.FromContext(ctx).ErrorContext(ctx, "Add category failed",
			log.NewFields().WithOperation(log.OpAddCategory).WithRule(name, "").WithError(err).ToSlice()...)
		s.render(w, r, http.StatusInternalServerError, s.page(r, &Flash{Kind: "error", Message: "The category could not be saved."}))
	case !added:
		redirectHome(w, r, "error", fmt.Sprintf("Category %q already exists.", name))
	default:
		redirectHome(w, r, "success", fmt.Sprintf("Added category %q.", name))
	}
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, s.page(r, &Flash{Kind: "error", Message: "Invalid request."}))
		return
	}
	edits, err := ParseCategoryEdits(r.PostForm)
	if err != nil {
		s.render(w, r, http.StatusBadRequest, s.page(r, &Flash{Kind: "error", Message: err.Error()}))
		return
	}

	res, err := s.dash.Apply(ctx, sessionID(r), edits)
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		clearSessionCookie(w)
		redirectHome(w, r, "error", "Your session has expired. Upload the statement again.")
	case errors.Is(err, core.ErrUnknownCategory), errors.Is(err, session.ErrInvalidRow):
		s.render(w, r, http.StatusUnprocessableEntity, s.page(r, &Flash{Kind: "error", Message: err.Error()}))
	case err != nil:
		log.FromContext(ctx).ErrorContext(ctx, "Apply failed", log.FieldOperation, log.OpApply, log.FieldError, err)
		s.render(w, r, http.StatusInternalServerError, s.page(r, &Flash{Kind: "error", Message: "Changes could not be saved."}))
	case res.Changed == 0:
		redirectHome(w, r, "success", "No changes to apply.")
	default:
		redirectHome(w, r, "success", fmt.Sprintf("Applied %d changes and learned %d keywords.", res.Changed, res.Learned))
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.dash.Summary(sessionID(r))
	if err != nil {
		writeJSONError(w, r, http.StatusNotFound, "no statement loaded")
		return
	}
	writeJSON(w, r, http.StatusOK, newSummaryJSON(sum, s.currency))
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.dash.Rules())
}
