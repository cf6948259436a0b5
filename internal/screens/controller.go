package screens

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/shared/middleware"
	"jobpilot-admin/internal/shared/utils/response"
)

const heartbeatInterval = 15 * time.Second

type Controller struct {
	service   Service
	heartbeat time.Duration
}

func NewController(service Service) *Controller {
	return &Controller{service: service, heartbeat: heartbeatInterval}
}

// OpenScreen godoc
// @Summary      Open a live list screen
// @Description  Subscribes a server-side screen to one page of a resource. Follow it with GET /screens/{id}/events.
// @Tags         screens
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body OpenRequest true "Resource and initial state"
// @Success      201 {object} response.StandardApiResponse{data=ScreenResponse}
// @Failure      400 {object} response.StandardApiResponse
// @Router       /screens [post]
func (c *Controller) OpenScreen(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var req OpenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	screen, err := c.service.Open(sess, req)
	if err != nil {
		response.RespondError(ctx, err, "Failed to open screen")
		return
	}
	response.RespondCreated(ctx, "Screen opened", responseFor(screen))
}

func (c *Controller) GetScreen(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	screen, err := c.service.Get(sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to load screen")
		return
	}
	response.RespondOK(ctx, "Screen retrieved", responseFor(screen))
}

func (c *Controller) UpdateScreen(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	var patch listview.Patch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		response.RespondBadRequest(ctx, err)
		return
	}

	screen, err := c.service.Update(sess, ctx.Param("id"), patch)
	if err != nil {
		response.RespondError(ctx, err, "Failed to update screen")
		return
	}
	response.RespondOK(ctx, "Screen updated", responseFor(screen))
}

func (c *Controller) RetryScreen(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	screen, err := c.service.Retry(sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to retry screen")
		return
	}
	response.RespondOK(ctx, "Screen refreshing", responseFor(screen))
}

func (c *Controller) CloseScreen(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	if err := c.service.Close(sess, ctx.Param("id")); err != nil {
		response.RespondError(ctx, err, "Failed to close screen")
		return
	}
	response.RespondOK(ctx, "Screen closed", nil)
}

// Events godoc
// @Summary      Stream a screen's frames
// @Description  Server-Sent Events: a "frame" event with the latest frame, then one per change, and "heartbeat" events in between. A "closed" event ends the stream.
// @Tags         screens
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        id path string true "Screen ID"
// @Success      200 {string} string "SSE stream"
// @Failure      404 {object} response.StandardApiResponse
// @Router       /screens/{id}/events [get]
func (c *Controller) Events(ctx *gin.Context) {
	sess, _ := middleware.SessionFrom(ctx)

	screen, err := c.service.Get(sess, ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err, "Failed to load screen")
		return
	}

	frames, stop := screen.Watch()
	defer stop()

	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")
	ctx.Writer.Header().Set("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(c.heartbeat)
	defer heartbeat.Stop()

	log := middleware.LoggerFrom(ctx)
	log.Info("screen stream opened", "screen_id", screen.ID(), "resource", screen.Resource())
	defer log.Info("screen stream closed", "screen_id", screen.ID())

	reqCtx := ctx.Request.Context()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-reqCtx.Done():
			return false
		case <-heartbeat.C:
			writeEvent(w, "heartbeat", fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()))
			return true
		case frame, ok := <-frames:
			if !ok {
				writeEvent(w, "closed", `{}`)
				return false
			}
			data, err := json.Marshal(frame)
			if err != nil {
				return false
			}
			writeEvent(w, "frame", string(data))
			return true
		}
	})
}

func writeEvent(w io.Writer, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
