package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/graph-gophers/graphql-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

type graphQLHandler struct {
	schema  *graphql.Schema
	logger  *slog.Logger
	metrics *metrics
	tracer  trace.Tracer
	timeout time.Duration
}

var _ http.Handler = (*graphQLHandler)(nil)

func newGraphQLHandler(schema *graphql.Schema, logger *slog.Logger, m *metrics, timeout time.Duration) *graphQLHandler {
	return &graphQLHandler{
		schema:  schema,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("github.com/n9te9/product-catalog/server"),
		timeout: timeout,
	}
}

func (h *graphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, status := decodeRequest(r)
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	info := inspectQuery(req.Query, req.OperationName)
	ctx, span := h.tracer.Start(ctx, "graphql."+info.Type, trace.WithAttributes(
		attribute.String("graphql.operation.type", info.Type),
		attribute.String("graphql.operation.name", req.OperationName),
		attribute.StringSlice("graphql.root_fields", info.RootFields),
	))
	defer span.End()

	start := time.Now()
	resp := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	elapsed := time.Since(start)

	span.SetAttributes(attribute.Int("graphql.errors", len(resp.Errors)))
	h.metrics.observe(info, len(resp.Errors) > 0, elapsed)
	h.logger.InfoContext(ctx, "graphql request",
		slog.String("request_id", RequestIDFromContext(r.Context())),
		slog.String("operation", info.Type),
		slog.String("operation_name", req.OperationName),
		slog.Any("root_fields", info.RootFields),
		slog.Int("errors", len(resp.Errors)),
		slog.Duration("duration", elapsed),
	)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", slog.String("error", err.Error()))
	}
}

// decodeRequest reads a GraphQL request from a POST JSON body or GET query parameters.
func decodeRequest(r *http.Request) (graphQLRequest, int) {
	var req graphQLRequest

	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, http.StatusBadRequest
		}
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				return req, http.StatusBadRequest
			}
		}
	default:
		return req, http.StatusMethodNotAllowed
	}

	return req, http.StatusOK
}
