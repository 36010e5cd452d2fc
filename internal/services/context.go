package services

import "context"

type contextKey string

const (
	organizationKey contextKey = "organization"
	runIDKey        contextKey = "run_id"
	operationKey    contextKey = "operation"
)

// WithOrganization annotates context with the organization being processed.
func WithOrganization(ctx context.Context, organization string) context.Context {
	if organization == "" {
		return ctx
	}
	return context.WithValue(ctx, organizationKey, organization)
}

// OrganizationFromContext returns the organization if present.
func OrganizationFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(organizationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with the ledger run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithOperation annotates context with the pipeline operation (update, clean, approve).
func WithOperation(ctx context.Context, operation string) context.Context {
	if operation == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, operation)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(operationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
