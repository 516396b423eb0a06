package auditlogs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hilthontt/encore/internal/application/usecases/auditlog"
	"github.com/hilthontt/encore/internal/domain/filter"
	"github.com/hilthontt/encore/internal/infrastructure/json"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"go.uber.org/zap"
)

type Handler struct {
	usecase auditlog.AuditLogUseCase
	logger  *logger.Logger
}

func NewHandler(usecase auditlog.AuditLogUseCase, logger *logger.Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

// ListHandler serves GET /audit-logs?page=&pageSize=&action=&actorId=&from=&to=.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	req, err := parseQuery(r)
	if err != nil {
		json.WriteBadRequestError(w, err.Error())
		return
	}

	page, err := h.usecase.List(r.Context(), actor, req)
	if err != nil {
		if json.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("failed to list audit logs", zap.Error(err))
		}
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, page)
}

func parseQuery(r *http.Request) (filter.PaginationInputWithFilter, error) {
	q := r.URL.Query()
	req := filter.PaginationInputWithFilter{
		DynamicFilter: filter.DynamicFilter{
			Filter: map[string]filter.Filter{},
			Sort:   []filter.Sort{{ColID: "Timestamp", Sort: filter.SortDesc}},
		},
	}

	var err error
	if v := q.Get("page"); v != "" {
		if req.PageNumber, err = strconv.Atoi(v); err != nil {
			return req, errInvalidParam("page")
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if req.PageSize, err = strconv.Atoi(v); err != nil {
			return req, errInvalidParam("pageSize")
		}
	}
	if v := q.Get("action"); v != "" {
		req.Filter["Action"] = filter.Equals(v)
	}
	if v := q.Get("actorId"); v != "" {
		req.Filter["ActorID"] = filter.Equals(v)
	}

	from, to := q.Get("from"), q.Get("to")
	if from != "" || to != "" {
		if from == "" {
			from = time.Unix(0, 0).UTC().Format(time.RFC3339)
		}
		if to == "" {
			to = time.Now().UTC().Format(time.RFC3339)
		}
		for name, v := range map[string]string{"from": from, "to": to} {
			if _, err := time.Parse(time.RFC3339, v); err != nil {
				return req, errInvalidParam(name)
			}
		}
		req.Filter["Timestamp"] = filter.Filter{
			Type:       filter.FilterInRange,
			FilterType: filter.DataTypeDate,
			From:       from,
			To:         to,
		}
	}

	return req, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string {
	return "invalid query parameter " + string(e)
}
