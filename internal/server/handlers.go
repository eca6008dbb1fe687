package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/timestables/internal/api"
	"github.com/abhisek/timestables/internal/levels"
	"github.com/abhisek/timestables/internal/store"
)

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, api.Envelope{Success: false, Error: msg})
}

func ok() api.Envelope {
	return api.Envelope{Success: true}
}

// storeFailure maps a backend error to a status code and logs it.
func (s *Server) storeFailure(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, store.ErrNotFound):
		fail(c, http.StatusNotFound, msg+": not found")
	case errors.Is(err, store.ErrSessionFinalized):
		fail(c, http.StatusConflict, msg+": session already finalized")
	default:
		s.log.Error(msg, zap.Error(err))
		fail(c, http.StatusInternalServerError, msg)
	}
}

func (s *Server) createSession(c *gin.Context) {
	var req api.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if _, err := levels.Get(req.Level); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	started := req.StartTime
	if started.IsZero() {
		started = s.now()
	}

	id, err := s.backend.CreateSession(c.Request.Context(), req.StudentName, req.Level, started)
	if err != nil {
		s.storeFailure(c, "Failed to start session", err)
		return
	}
	c.JSON(http.StatusOK, api.CreateSessionResponse{
		Envelope:  api.Envelope{Success: true, Message: "Session started successfully"},
		SessionID: api.SessionID(id),
	})
}

func (s *Server) logAnswer(c *gin.Context) {
	var entry store.AnswerLogEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if entry.SessionID == "" || entry.StudentName == "" || entry.Question == "" {
		fail(c, http.StatusBadRequest, "sessionId, studentName and question are required")
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}

	if err := s.backend.AppendAnswer(c.Request.Context(), entry); err != nil {
		s.storeFailure(c, "Failed to log answer", err)
		return
	}
	c.JSON(http.StatusOK, api.Envelope{Success: true, Message: "Answer logged successfully"})
}

func (s *Server) endSession(c *gin.Context) {
	var req api.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	end := req.EndTime
	if end.IsZero() {
		end = s.now()
	}

	stats, err := s.backend.FinalizeSession(c.Request.Context(), store.FinalizeRequest{
		SessionID:      c.Param("id"),
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
		Accuracy:       req.Accuracy,
		LevelPassed:    req.LevelPassed,
		EndTime:        end,
	})
	if err != nil {
		s.storeFailure(c, "Failed to end session", err)
		return
	}
	c.JSON(http.StatusOK, api.EndSessionResponse{
		Envelope: api.Envelope{Success: true, Message: "Session ended successfully"},
		Stats:    stats,
	})
}

func (s *Server) listStudents(c *gin.Context) {
	names, err := s.backend.ListStudents(c.Request.Context())
	if err != nil {
		s.storeFailure(c, "Failed to get students", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, api.StudentsResponse{Envelope: ok(), Students: names})
}

func (s *Server) getStudent(c *gin.Context) {
	detail, err := s.backend.GetStudent(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.storeFailure(c, "Failed to get student data", err)
		return
	}
	if detail.Sessions == nil {
		detail.Sessions = []store.SessionRecord{}
	}
	c.JSON(http.StatusOK, api.StudentResponse{Envelope: ok(), StudentDetail: detail})
}

func (s *Server) leaderboard(c *gin.Context) {
	limit := store.DefaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			fail(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	entries, err := s.backend.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		s.storeFailure(c, "Failed to get leaderboard", err)
		return
	}
	if entries == nil {
		entries = []store.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, api.LeaderboardResponse{Envelope: ok(), Leaderboard: entries})
}

func (s *Server) health(c *gin.Context) {
	if s.ping != nil {
		if err := s.ping(c.Request.Context()); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			fail(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	c.JSON(http.StatusOK, api.HealthResponse{
		Envelope:  api.Envelope{Success: true, Message: "timestables backend is running"},
		Timestamp: s.now().UTC().Truncate(time.Millisecond),
	})
}
