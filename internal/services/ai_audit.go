package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/repos"
	"github.com/projektl/projekt-l-backend/internal/types"
)

// ModelClient is the narrow slice of the Anthropic client the services rely
// on; tests substitute a fake.
type ModelClient interface {
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
	Model() string
}

const promptAuditLimit = 4000

// recordAICall writes an audit row. Failures are warn-logged and swallowed;
// auditing never fails the parent operation.
func recordAICall(ctx context.Context, log *logger.Logger, repo repos.AICallLogRepo, userID uuid.UUID, callType, model, prompt, response string, callErr error) {
	if repo == nil {
		return
	}
	row := &types.AICallLog{
		ID:       uuid.New(),
		CallType: callType,
		Model:    model,
		Prompt:   truncate(prompt, promptAuditLimit),
		Response: truncate(response, promptAuditLimit),
		Success:  callErr == nil,
	}
	if userID != uuid.Nil {
		row.UserID = &userID
	}
	if callErr != nil {
		row.Error = callErr.Error()
	}
	if err := repo.Create(ctx, nil, row); err != nil {
		log.Warn("Failed to write AI call log", "call_type", callType, "error", err)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
