package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/problemgen"
	"github.com/abhisek/quizwhiz/internal/quiz"
	"github.com/abhisek/quizwhiz/internal/store"
	"github.com/abhisek/quizwhiz/internal/topicintro"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type startRequest struct {
	Subject string `json:"subject"`
	Grade   int    `json:"grade"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type feedbackRequest struct {
	Tag  string `json:"tag"`
	Note string `json:"note"`
}

type topicRequest struct {
	Subject string `json:"subject"`
	Grade   int    `json:"grade"`
	Topic   string `json:"topic"`
}

type generateRequest struct {
	Subject string `json:"subject"`
	Grade   int    `json:"grade"`
	Topic   string `json:"topic"`
	Level   string `json:"level"`
}

type questionResponse struct {
	Question  *quiz.QuestionView `json:"question"`
	TopicName string             `json:"topicName"`
	Remaining int                `json:"secondsRemaining"`
}

const msgGenerationFailed = "couldn't generate a question, try again"

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.manager.Len(),
	})
}

func (s *Server) startQuiz(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decode(w, r, &req) {
		return
	}
	subject := curriculum.Subject(req.Subject)
	if _, err := s.catalog.Topics(req.Grade, subject); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	sess, err := s.manager.Start(subject, req.Grade)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cs, _ := s.cookies.Get(r, s.cfg.CookieName)
	cs.Values[sessionKey] = sess.ID()
	if err := cs.Save(r, w); err != nil {
		s.log.Error("failed to save quiz cookie", "error", err)
		s.manager.Remove(r.Context(), sess.ID())
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "failed to start quiz"})
		return
	}
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) nextQuestion(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	q, err := sess.RequestNextQuestion(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	v := sess.View()
	writeJSON(w, http.StatusOK, questionResponse{
		Question:  quiz.NewQuestionView(q),
		TopicName: v.TopicName,
		Remaining: v.SecondsRemaining,
	})
}

func (s *Server) submitAnswer(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := sess.SubmitAnswer(req.Answer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) useHint(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	hint, err := sess.UseHint()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hint": hint})
}

func (s *Server) quizIntro(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	d, err := sess.TopicIntro(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if d == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) submitFeedback(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req feedbackRequest
	if !decode(w, r, &req) {
		return
	}
	tag, err := store.ParseFeedbackTag(req.Tag)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := sess.SubmitFeedback(r.Context(), tag, req.Note); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

func (s *Server) finishQuiz(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.FinalizeReport(r.Context()))
}

func (s *Server) topicDetail(w http.ResponseWriter, r *http.Request) {
	if s.intros == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "topic details are not available"})
		return
	}
	var req topicRequest
	if !decode(w, r, &req) {
		return
	}
	subject := curriculum.Subject(req.Subject)
	if err := s.catalog.Validate(subject, req.Grade, req.Topic); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	d, err := s.intros.Generate(r.Context(), topicintro.Input{Subject: subject, Grade: req.Grade, Topic: req.Topic})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// generateQuestion acquires one question outside any quiz session. The
// answer is included.
func (s *Server) generateQuestion(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	subject := curriculum.Subject(req.Subject)
	if err := s.catalog.Validate(subject, req.Grade, req.Topic); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	level := curriculum.VeryEasy
	if req.Level != "" {
		l, err := curriculum.ParseLevel(req.Level)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		level = l
	}
	subs, _ := s.catalog.Subtopics(subject, req.Topic)

	q, err := s.acquirer.Acquire(r.Context(), problemgen.AcquireInput{
		Subject:   subject,
		Grade:     req.Grade,
		Topic:     req.Topic,
		Level:     level,
		Subtopics: subs,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	switch {
	case errors.Is(err, quiz.ErrSessionNotFound):
		status = http.StatusNotFound
	case quiz.Ended(err):
		status = http.StatusConflict
	case errors.Is(err, quiz.ErrInvalidAnswer):
		status = http.StatusBadRequest
	case errors.Is(err, quiz.ErrNoQuestion),
		errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, quiz.ErrSuperseded):
		status = http.StatusConflict
	case errors.Is(err, problemgen.ErrGenerationExhausted):
		status = http.StatusServiceUnavailable
		msg = msgGenerationFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
		msg = msgGenerationFailed
	}

	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
