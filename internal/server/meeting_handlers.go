package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/auth"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/storage"
)

type meetingPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartTime   *string `json:"start_time"`
	Duration    *int    `json:"duration"`
}

type meetingResponse struct {
	Meeting domain.Meeting `json:"meeting"`
}

type meetingsResponse struct {
	Meetings []domain.Meeting `json:"meetings"`
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	meetings, err := s.store.MeetingsByOwner(r.Context(), userID)
	if err != nil {
		s.log.Error("list meetings", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not load meetings")
		return
	}
	if meetings == nil {
		meetings = []domain.Meeting{}
	}

	writeJSON(w, http.StatusOK, meetingsResponse{Meetings: meetings})
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req meetingPayload
	_ = parseJSON(r, &req)

	title := ""
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
	}
	if title == "" || req.StartTime == nil || *req.StartTime == "" {
		writeMessage(w, http.StatusBadRequest, "Title and start_time are required")
		return
	}

	start, err := parseISOTime(*req.StartTime)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "start_time must be ISO8601")
		return
	}

	meeting := domain.Meeting{
		OwnerID:   userID,
		Title:     title,
		StartTime: start,
	}
	if req.Description != nil {
		meeting.Description = *req.Description
	}
	if req.Duration != nil {
		meeting.DurationMinutes = *req.Duration
	}

	meeting, err = s.store.CreateMeeting(r.Context(), meeting)
	if err != nil {
		s.log.Error("create meeting", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not create meeting")
		return
	}

	writeJSON(w, http.StatusCreated, meetingResponse{Meeting: meeting})
}

func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	meetingID := chi.URLParam(r, "meetingID")

	meeting, err := s.store.MeetingByID(r.Context(), meetingID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Meeting not found")
		return
	}
	if err != nil {
		s.log.Error("load meeting", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not load meeting")
		return
	}

	var req meetingPayload
	_ = parseJSON(r, &req)

	if req.Title != nil {
		if title := strings.TrimSpace(*req.Title); title != "" {
			meeting.Title = title
		}
	}
	if req.Description != nil {
		meeting.Description = *req.Description
	}
	if req.Duration != nil && *req.Duration > 0 {
		meeting.DurationMinutes = *req.Duration
	}
	if req.StartTime != nil {
		start, err := parseISOTime(*req.StartTime)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "start_time must be ISO8601")
			return
		}
		meeting.StartTime = start
	}

	meeting, err = s.store.UpdateMeeting(r.Context(), meeting)
	if err != nil {
		s.log.Error("update meeting", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not update meeting")
		return
	}

	writeJSON(w, http.StatusOK, meetingResponse{Meeting: meeting})
}

func (s *Server) handleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	meetingID := chi.URLParam(r, "meetingID")

	err := s.store.DeleteMeeting(r.Context(), meetingID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Meeting not found")
		return
	}
	if err != nil {
		s.log.Error("delete meeting", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not delete meeting")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"deleted": meetingID})
}
