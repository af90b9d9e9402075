package execute

import (
	"net/http"

	"github.com/openpair/coderoom/internal/infrastructure/json"
	"github.com/openpair/coderoom/internal/infrastructure/logging"
	"github.com/openpair/coderoom/internal/infrastructure/runner"
	"github.com/openpair/coderoom/internal/infrastructure/validate"
)

type Handler struct {
	runner *runner.Client
	logger logging.Logger
}

func NewHandler(runner *runner.Client, logger logging.Logger) *Handler {
	return &Handler{
		runner: runner,
		logger: logger,
	}
}

// RunCodeHandler godoc
// @Summary      Execute a code snippet
// @Description  Forwards the snippet to the execution collaborator and returns its output or error verbatim.
// @Tags         execute
// @Accept       json
// @Produce      json
// @Param        request body runCodeRequest true "Code and language"
// @Success      200 {object} runner.RunResult "Execution result"
// @Failure      400 {object} json.ErrorResponse "Invalid request"
// @Failure      502 {object} json.ErrorResponse "Collaborator unreachable"
// @Router       /run-code [post]
func (h *Handler) RunCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req runCodeRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if err := req.validate(); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	result, err := h.runner.Run(r.Context(), runner.RunRequest{
		Code:     req.Code,
		Language: req.Language,
	})
	if err != nil {
		h.logger.Error(logging.General, logging.ExternalService, "code execution failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		json.WriteError(w, http.StatusBadGateway, "code execution service unavailable")
		return
	}

	json.Write(w, http.StatusOK, result)
}

type runCodeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func (r runCodeRequest) validate() error {
	if err := validate.Field("code", validate.Required())(r.Code); err != nil {
		return err
	}
	return validate.Field("language", validate.Required(), validate.OneOf(runner.SupportedLanguages...))(r.Language)
}
