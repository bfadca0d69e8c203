// Package common holds small helpers shared by the orchestrator's pipeline
// stages, kept separate from logger so stages don't need to know about
// logrus levels directly.
package common

import (
	"context"

	"github.com/nbaqa/hro/internal/logger"
	"github.com/sirupsen/logrus"
)

// PipelineInfo logs a structured info-level pipeline event.
func PipelineInfo(ctx context.Context, stage, action string, fields map[string]interface{}) {
	logger.WithFields(ctx, logrus.InfoLevel, withStageAction(stage, action, fields), "pipeline")
}

// PipelineWarn logs a structured warning-level pipeline event.
func PipelineWarn(ctx context.Context, stage, action string, fields map[string]interface{}) {
	logger.WithFields(ctx, logrus.WarnLevel, withStageAction(stage, action, fields), "pipeline")
}

// PipelineError logs a structured error-level pipeline event.
func PipelineError(ctx context.Context, stage, action string, fields map[string]interface{}) {
	logger.WithFields(ctx, logrus.ErrorLevel, withStageAction(stage, action, fields), "pipeline")
}

func withStageAction(stage, action string, fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out["stage"] = stage
	out["action"] = action
	return out
}
