package server

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/auth"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
)

// greetingText is what the assistant says before its first capture.
const greetingText = "Hi! I'm your meeting assistant. What would you like to schedule?"

type processVoiceRequest struct {
	Transcript string `json:"transcript"`
	Text       string `json:"text"`
}

type processVoiceResponse struct {
	Success bool                  `json:"success"`
	Meeting *domain.Meeting       `json:"meeting,omitempty"`
	Intent  *domain.MeetingIntent `json:"intent,omitempty"`
	Message string                `json:"message"`
}

func (s *Server) handleProcessVoice(w http.ResponseWriter, r *http.Request) {
	var req processVoiceRequest
	_ = parseJSON(r, &req)

	transcript := strings.TrimSpace(req.Transcript)
	if transcript == "" {
		transcript = strings.TrimSpace(req.Text)
	}
	if transcript == "" {
		writeJSON(w, http.StatusBadRequest, processVoiceResponse{
			Success: false,
			Message: "Transcript is required",
		})
		return
	}

	parsed := s.parser.Parse(transcript)
	if parsed.StartTime == nil {
		writeJSON(w, http.StatusUnprocessableEntity, processVoiceResponse{
			Success: false,
			Intent:  &parsed,
			Message: "Could not determine a start time; please confirm the details",
		})
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	meeting, err := s.store.CreateMeeting(r.Context(), domain.Meeting{
		OwnerID:         userID,
		Title:           parsed.Title,
		Description:     parsed.Notes,
		StartTime:       *parsed.StartTime,
		DurationMinutes: parsed.DurationMinutes,
	})
	if err != nil {
		s.log.Error("schedule meeting from transcript", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Could not schedule meeting")
		return
	}

	s.log.Info("meeting scheduled from voice",
		"meeting_id", meeting.ID, "confidence", parsed.Confidence)
	writeJSON(w, http.StatusOK, processVoiceResponse{
		Success: true,
		Meeting: &meeting,
		Intent:  &parsed,
		Message: "Meeting scheduled",
	})
}

type greetingResponse struct {
	Success   bool   `json:"success"`
	AudioData string `json:"audioData,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	clip, err := s.synth.Synthesize(r.Context(), greetingText)
	if err != nil {
		s.log.Warn("greeting synthesis unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, greetingResponse{
			Success: false,
			Message: "Voice synthesis is not configured",
		})
		return
	}

	writeJSON(w, http.StatusOK, greetingResponse{
		Success:   true,
		AudioData: base64.StdEncoding.EncodeToString(clip.Data),
	})
}
