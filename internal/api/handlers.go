package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/input"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"launcher": s.loop.Snapshot(),
		"apps":     s.apps.Stats(),
		"input": gin.H{
			"subscriber": s.input.Subscriber(),
			"dropped":    s.input.Dropped(),
		},
	})
}

type appView struct {
	ID           string           `json:"id"`
	Label        string           `json:"label"`
	Capabilities app.Capabilities `json:"capabilities"`
}

func (s *Server) listApps(c *gin.Context) {
	descs := s.reg.List()
	out := make([]appView, 0, len(descs))
	for _, d := range descs {
		out = append(out, appView{ID: d.ID, Label: d.Label, Capabilities: d.Capabilities})
	}
	c.JSON(http.StatusOK, gin.H{"apps": out})
}

type inputRequest struct {
	Action  string `json:"action" binding:"required"`
	Pressed bool   `json:"pressed"`
	Source  string `json:"source"`
}

func (s *Server) postInput(c *gin.Context) {
	var req inputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action := input.ParseAction(req.Action)
	if action == input.ActionNone {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + req.Action})
		return
	}
	source := req.Source
	if source == "" {
		source = "http"
	}

	s.input.Push(input.Event{
		Action:  action,
		Pressed: req.Pressed,
		Time:    time.Now(),
		Source:  source,
	})
	s.metrics.RecordInput(source)
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
