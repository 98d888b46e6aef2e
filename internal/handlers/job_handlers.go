package handlers

import (
	"errors"
	"net/http"

	"freightdesk/internal/common"
	"freightdesk/internal/jobs/background"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JobRunner is the part of the background scheduler exposed over HTTP.
type JobRunner interface {
	Jobs() []background.JobInfo
	RunNow(name string) error
}

type JobHandlers struct {
	runner JobRunner
	logger *zap.Logger
}

func NewJobHandlers(runner JobRunner, logger *zap.Logger) *JobHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobHandlers{runner: runner, logger: logger}
}

// Register mounts the job routes on g.
func (h *JobHandlers) Register(g *echo.Group) {
	g.GET("/jobs", h.ListJobs)
	g.POST("/jobs/:name/run", h.RunJob)
}

// ListJobs godoc
// @Summary      List background jobs
// @Tags         jobs
// @Produce      json
// @Success      200  {array}  background.JobInfo
// @Router       /v1/jobs [get]
func (h *JobHandlers) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, h.runner.Jobs())
}

// RunJob godoc
// @Summary      Trigger a background job now
// @Tags         jobs
// @Produce      json
// @Param        name  path  string  true  "Job name"
// @Success      202  {object}  map[string]string
// @Failure      404  {object}  common.ErrorResponse
// @Router       /v1/jobs/{name}/run [post]
func (h *JobHandlers) RunJob(c echo.Context) error {
	name := c.Param("name")
	if err := h.runner.RunNow(name); err != nil {
		if errors.Is(err, background.ErrUnknownJob) {
			return common.SendNotFoundError(c, "job "+name)
		}
		h.logger.Error("failed to trigger job", zap.String("job", name), zap.Error(err))
		return common.SendServerError(c, "Failed to trigger job")
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}
