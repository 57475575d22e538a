package gateway

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ariata-os/ariata/errors"
	"github.com/ariata-os/ariata/record"
)

// ingestRequest is one pushed batch. The source and stream ride in the
// URL; every record in the batch belongs to that pair and to one device.
type ingestRequest struct {
	Data     []record.Raw `json:"data"`
	DeviceID string       `json:"device_id"`

	// Checkpoint is the sender's incremental sync cursor, echoed back
	// so pull workers can resume.
	Checkpoint string `json:"checkpoint,omitempty"`

	// Timestamp is when the sender assembled the batch. Informational.
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ingestResponse reports per-batch outcome counts. Duplicates are
// successful no-ops; only failed records are worth resending.
type ingestResponse struct {
	Processed  int    `json:"processed"`
	Duplicates int    `json:"duplicates"`
	Rejected   int    `json:"rejected"`
	Failed     int    `json:"failed"`
	ActivityID string `json:"activity_id"`
	Checkpoint string `json:"next_checkpoint,omitempty"`
}

// handleIngest accepts one batch, runs it through the processor, and
// answers with the outcome counts.
func (g *Gateway) handleIngest(w http.ResponseWriter, r *http.Request) {
	g.requestsTotal.Add(1)

	reqID := requestID(r)
	w.Header().Set("X-Request-ID", reqID)

	source := r.PathValue("source")
	stream := r.PathValue("stream")

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, g.config.MaxRequestSize+1))
	if err != nil {
		g.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if int64(len(body)) > g.config.MaxRequestSize {
		g.writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request exceeds %d bytes", g.config.MaxRequestSize))
		return
	}

	var req ingestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		g.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.DeviceID == "" {
		g.writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	activityID := uuid.NewString()
	logger := g.logger.With(
		"request_id", reqID,
		"activity_id", activityID,
		"source", source,
		"stream", stream,
		"device_id", req.DeviceID,
	)
	logger.Info("batch received", "records", len(req.Data))

	summary, err := g.processor.ProcessBatch(r.Context(), source, stream, req.DeviceID, req.Data)
	if err != nil {
		if stderrors.Is(err, errors.ErrUnknownStream) {
			logger.Warn("unknown stream", "error", err)
			g.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if errors.IsFatal(err) {
			logger.Warn("batch rejected", "error", err)
			g.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("batch processing failed", "error", err)
		g.writeError(w, http.StatusInternalServerError, "batch processing failed")
		return
	}

	logger.Info("batch processed",
		"processed", summary.Accepted,
		"duplicates", summary.Duplicates,
		"rejected", summary.Rejected,
		"failed", summary.Failed,
	)

	g.writeJSON(w, http.StatusOK, ingestResponse{
		Processed:  summary.Accepted,
		Duplicates: summary.Duplicates,
		Rejected:   summary.Rejected,
		Failed:     summary.Failed,
		ActivityID: activityID,
		Checkpoint: req.Checkpoint,
	})
}
