package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dataprobe/dataprobe/internal/advisor"
	"github.com/dataprobe/dataprobe/internal/validation"
	"github.com/dataprobe/dataprobe/pkg/errors"
	"github.com/dataprobe/dataprobe/pkg/models"
)

// maxUploadBytes bounds the multipart form held in memory per request.
const maxUploadBytes = 50 << 20

// ValidationResponse is the body returned by POST /validate.
type ValidationResponse struct {
	SessionID string                  `json:"session_id"`
	Filename  string                  `json:"filename"`
	Summary   *models.Summary         `json:"summary"`
	Issues    []models.Issue          `json:"issues"`
	Readiness *models.ReadinessResult `json:"readiness,omitempty"`
}

// Validate accepts a multipart upload ("file" part, optional "rules" JSON
// part), runs the full check battery plus any configured rules, and persists
// the result as a session. ?insights=true adds the ML readiness analysis.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, errors.WrapError(err, errors.ErrorTypeLoader, "INVALID_UPLOAD",
			"Expected a multipart form upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, errors.WrapError(err, errors.ErrorTypeLoader, "MISSING_FILE",
			"Form field 'file' is required"))
		return
	}
	defer file.Close()

	ds, err := h.loader.Load(file, header.Filename)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rules, err := parseRules(r.FormValue("rules"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	validator := validation.NewValidator(ds, h.logger)
	issues := validator.ValidateAll()

	if len(rules) > 0 {
		engine := validation.NewRuleEngine(rules, h.logger)
		issues = append(issues, engine.Validate(ds)...)
	}

	session := &models.CheckSession{
		ID:        uuid.New().String(),
		Filename:  header.Filename,
		CreatedAt: time.Now().UTC(),
		Issues:    issues,
		Summary:   models.NewSummary(issues, ds.Rows(), ds.ColumnCount()),
	}

	if r.URL.Query().Get("insights") == "true" {
		session.Readiness = advisor.NewAdvisor(ds, issues, h.logger).Analyze()
	}

	if err := h.store.Save(r.Context(), session); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"filename":   session.Filename,
		"issues":     len(issues),
		"rules":      len(rules),
	}).Info("Validation session created")

	h.writeJSON(w, http.StatusOK, ValidationResponse{
		SessionID: session.ID,
		Filename:  session.Filename,
		Summary:   session.Summary,
		Issues:    session.Issues,
		Readiness: session.Readiness,
	})
}

func parseRules(raw string) ([]models.Rule, error) {
	if raw == "" {
		return nil, nil
	}

	var rules []models.Rule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeValidation, "INVALID_RULES",
			"Form field 'rules' must be a JSON array of rules")
	}
	return rules, nil
}
